package faceapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kozaktomas/face-portal/internal/constants"
)

// FaceID is an upstream face identifier. The upstream may send it as a number,
// a string, or null; numeric ids stay numeric when marshaled back.
type FaceID struct {
	value   string
	numeric bool
	valid   bool
}

// NewFaceID creates a string face id.
func NewFaceID(value string) FaceID {
	return FaceID{value: value, valid: true}
}

// NewNumericFaceID creates a numeric face id. The value must be a JSON number.
func NewNumericFaceID(value string) FaceID {
	return FaceID{value: value, numeric: true, valid: true}
}

// Valid reports whether the id was present and non-null.
func (id FaceID) Valid() bool {
	return id.valid
}

// IsNumeric reports whether the upstream sent the id as a JSON number.
func (id FaceID) IsNumeric() bool {
	return id.numeric
}

func (id FaceID) String() string {
	return id.value
}

// UnmarshalJSON accepts strings and numbers. Null and any other JSON type leave
// the id invalid, which excludes the entry from deletion.
func (id *FaceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*id = FaceID{}
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode face id: %w", err)
		}
		*id = NewFaceID(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("decode face id: %w", err)
		}
		*id = NewNumericFaceID(n.String())
	}
	return nil
}

func (id FaceID) MarshalJSON() ([]byte, error) {
	switch {
	case !id.valid:
		return []byte("null"), nil
	case id.numeric:
		return []byte(id.value), nil
	default:
		return json.Marshal(id.value)
	}
}

// FaceEntry is one registered face as reported by the upstream list endpoint.
type FaceEntry struct {
	ID   FaceID `json:"id"`
	Name string `json:"name"`
}

// UnmarshalJSON decodes an entry leniently. A name that is not a string, or an
// entry that is not an object, leaves the fields empty so the entry never
// matches a delete instead of failing the whole list.
func (e *FaceEntry) UnmarshalJSON(data []byte) error {
	*e = FaceEntry{}

	var raw struct {
		ID   FaceID          `json:"id"`
		Name json.RawMessage `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil //nolint:nilerr // malformed entries are skipped
	}
	e.ID = raw.ID

	var name string
	if err := json.Unmarshal(raw.Name, &name); err == nil {
		e.Name = name
	}
	return nil
}

// listResponse covers both field names the upstream has used for the entry list.
// A present registered_face_entries wins even when empty; registered_persons is
// only read when the first field is absent or null.
type listResponse struct {
	RegisteredFaceEntries []FaceEntry `json:"registered_face_entries"`
	RegisteredPersons     []FaceEntry `json:"registered_persons"`
}

func (l *listResponse) entries() []FaceEntry {
	if l.RegisteredFaceEntries != nil {
		return l.RegisteredFaceEntries
	}
	if l.RegisteredPersons != nil {
		return l.RegisteredPersons
	}
	return []FaceEntry{}
}

// Response is a buffered upstream response, relayed as-is to the caller.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsSuccess reports whether the upstream answered with a 2xx status.
func (r *Response) IsSuccess() bool {
	return isSuccess(r.StatusCode)
}

// RelayHeaders copies the custom upstream headers (result code, response type and
// response text) into dst.
func (r *Response) RelayHeaders(dst http.Header) {
	RelayHeaders(r.Header, dst)
}

// RelayHeaders copies the custom upstream headers from src into dst.
func RelayHeaders(src, dst http.Header) {
	for _, name := range constants.RelayedHeaders {
		if v := src.Get(name); v != "" {
			dst.Set(name, v)
		}
	}
}

// Image is an uploaded image forwarded to the upstream API.
type Image struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
