// Package facedelete removes every face entry registered under a name.
//
// The upstream API only deletes by id, so the deleter lists the caller's
// entries, keeps those whose name matches exactly and whose id is present, and
// issues one delete per id. Deletes are best-effort: a failure never stops the
// remaining deletes and nothing is rolled back. Each failure is reported by id.
package facedelete

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kozaktomas/face-portal/internal/faceapi"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrMissingIdentity is returned when no identity token was supplied.
	ErrMissingIdentity = errors.New("identity token is required")

	// ErrMissingName is returned when no target name was supplied.
	ErrMissingName = errors.New("name is required")
)

// FaceStore is the upstream capability the deleter needs.
type FaceStore interface {
	ListFaces(ctx context.Context, uid string) ([]faceapi.FaceEntry, error)
	DeleteFace(ctx context.Context, uid string, id faceapi.FaceID) error
}

// Outcome tags the result of a delete-by-name run.
type Outcome int

const (
	// NoneMatched means no entry carried the name; nothing was deleted.
	NoneMatched Outcome = iota
	// AllDeleted means every matching entry was deleted.
	AllDeleted
	// PartiallyDeleted means at least one delete failed. This includes the
	// case where every delete failed.
	PartiallyDeleted
)

func (o Outcome) String() string {
	switch o {
	case NoneMatched:
		return "none_matched"
	case AllDeleted:
		return "deleted"
	case PartiallyDeleted:
		return "partial"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Failure describes one delete that did not succeed.
type Failure struct {
	ID     faceapi.FaceID `json:"id"`
	Status int            `json:"status"`
	Error  string         `json:"error"`
}

// Result is the aggregate of one delete-by-name run.
type Result struct {
	Outcome   Outcome
	Name      string
	Attempted []faceapi.FaceID
	Deleted   int
	Failures  []Failure
}

// ProgressFunc is called after each delete attempt with its id and error (nil on success).
type ProgressFunc func(id faceapi.FaceID, err error)

// Deleter runs delete-by-name against a FaceStore.
type Deleter struct {
	store       FaceStore
	concurrency int
	progress    ProgressFunc
}

// Option configures a Deleter.
type Option func(*Deleter)

// WithConcurrency allows up to n deletes in flight at once. Values below 1 mean sequential.
func WithConcurrency(n int) Option {
	return func(d *Deleter) {
		if n < 1 {
			n = 1
		}
		d.concurrency = n
	}
}

// WithProgress registers a callback invoked after every delete attempt.
// With concurrency above 1 it may be called from several goroutines.
func WithProgress(fn ProgressFunc) Option {
	return func(d *Deleter) {
		d.progress = fn
	}
}

// New creates a Deleter. Deletes run sequentially unless WithConcurrency is given.
func New(store FaceStore, opts ...Option) *Deleter {
	d := &Deleter{store: store, concurrency: 1}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MatchingIDs returns the ids of entries named exactly name, in list order.
// Entries without an id are skipped.
func MatchingIDs(entries []faceapi.FaceEntry, name string) []faceapi.FaceID {
	var ids []faceapi.FaceID
	for _, e := range entries {
		if e.Name == name && e.ID.Valid() {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// DeleteByName deletes every entry of uid registered under name.
// The returned error is non-nil only for missing input or a failed listing;
// individual delete failures are reported in the Result.
func (d *Deleter) DeleteByName(ctx context.Context, uid, name string) (*Result, error) {
	if uid == "" {
		return nil, ErrMissingIdentity
	}
	if name == "" {
		return nil, ErrMissingName
	}

	entries, err := d.store.ListFaces(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list faces: %w", err)
	}

	ids := MatchingIDs(entries, name)
	result := &Result{Outcome: NoneMatched, Name: name, Attempted: ids}
	if len(ids) == 0 {
		return result, nil
	}

	errs := d.deleteAll(ctx, uid, ids)
	for i, err := range errs {
		if err == nil {
			result.Deleted++
			continue
		}
		result.Failures = append(result.Failures, Failure{
			ID:     ids[i],
			Status: faceapi.HTTPStatus(err),
			Error:  faceapi.ErrorMessage(err),
		})
	}

	if len(result.Failures) == 0 {
		result.Outcome = AllDeleted
	} else {
		result.Outcome = PartiallyDeleted
	}
	return result, nil
}

// deleteAll issues one delete per id and returns the errors indexed like ids.
func (d *Deleter) deleteAll(ctx context.Context, uid string, ids []faceapi.FaceID) []error {
	errs := make([]error, len(ids))

	if d.concurrency <= 1 {
		for i, id := range ids {
			errs[i] = d.deleteOne(ctx, uid, id)
		}
		return errs
	}

	// Goroutines never return an error so one failure cannot cancel the others.
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = d.deleteOne(ctx, uid, id)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func (d *Deleter) deleteOne(ctx context.Context, uid string, id faceapi.FaceID) error {
	err := d.store.DeleteFace(ctx, uid, id)
	if d.progress != nil {
		d.progress(id, err)
	}
	return err
}

// IsInputError reports whether err is a missing-input error from DeleteByName.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingIdentity) || errors.Is(err, ErrMissingName)
}

// HTTPStatus returns the HTTP status for a completed run: 207 Multi-Status when any
// delete failed, 200 otherwise.
func (r *Result) HTTPStatus() int {
	if r.Outcome == PartiallyDeleted {
		return http.StatusMultiStatus
	}
	return http.StatusOK
}
