package handlers

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/kozaktomas/face-portal/internal/constants"
	"github.com/kozaktomas/face-portal/internal/faceapi"
	"github.com/kozaktomas/face-portal/internal/web/middleware"
)

// ProxyHandler forwards register, recognize and list requests to the upstream API.
type ProxyHandler struct {
	client        *faceapi.Client
	maxUploadSize int64
}

// NewProxyHandler creates a new proxy handler.
func NewProxyHandler(client *faceapi.Client) *ProxyHandler {
	return &ProxyHandler{client: client, maxUploadSize: constants.MaxUploadSize}
}

// parseUpload reads the multipart form. A request that is not multipart at all is
// treated as an empty form so the field checks report what is missing.
// It returns false after writing an error response.
func (h *ProxyHandler) parseUpload(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	err := r.ParseMultipartForm(constants.MaxUploadMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		respondError(w, http.StatusRequestEntityTooLarge, "Uploaded file is too large")
		return false
	}
	respondError(w, http.StatusBadRequest, "failed to parse multipart form")
	return false
}

// formImage returns the first file sent in the "image" field.
func formImage(r *http.Request) (*multipart.FileHeader, bool) {
	if r.MultipartForm == nil {
		return nil, false
	}
	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		return nil, false
	}
	return files[0], true
}

func cleanupForm(r *http.Request) {
	if r.MultipartForm != nil {
		r.MultipartForm.RemoveAll()
	}
}

// openImage opens an uploaded file for forwarding. The caller must close the returned file.
func openImage(fh *multipart.FileHeader) (faceapi.Image, io.Closer, error) {
	file, err := fh.Open()
	if err != nil {
		return faceapi.Image{}, nil, err
	}
	return faceapi.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        file,
	}, file, nil
}

// Register forwards a face registration (image, uid and name) to the upstream API.
func (h *ProxyHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.parseUpload(w, r) {
		return
	}
	defer cleanupForm(r)

	fh, ok := formImage(r)
	if !ok {
		log.Printf("[proxy register] No image file found")
		respondError(w, http.StatusBadRequest, "No image file found in proxy request")
		return
	}
	uid := r.PostFormValue("uid")
	if uid == "" {
		log.Printf("[proxy register] No UID found")
		respondError(w, http.StatusBadRequest, "No UID found in proxy request")
		return
	}
	name := r.PostFormValue("name")
	if name == "" {
		log.Printf("[proxy register] No name found")
		respondError(w, http.StatusBadRequest, "No name found in proxy request")
		return
	}

	img, file, err := openImage(fh)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: registerMessages.internal, Details: err.Error()})
		return
	}
	defer file.Close()

	log.Printf("[proxy register] Forwarding %s (%d bytes) for name %s",
		sanitizeForLog(fh.Filename), fh.Size, sanitizeForLog(name))

	// The upstream call outlives a disconnected client.
	ctx := context.WithoutCancel(r.Context())
	resp, err := h.client.Register(ctx, uid, name, img)
	if err != nil {
		logUpstreamError("proxy register", err)
		respondUpstreamError(w, err, registerMessages)
		return
	}

	log.Printf("[proxy register] Backend responded with status %d", resp.StatusCode)
	relayResponse(w, resp, registerMessages.rejected)
}

// Recognize forwards an image for recognition and streams the upstream answer back.
func (h *ProxyHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	if !h.parseUpload(w, r) {
		return
	}
	defer cleanupForm(r)

	fh, ok := formImage(r)
	if !ok {
		log.Printf("[proxy recognize] No image file found")
		respondError(w, http.StatusBadRequest, "No image file found in proxy request")
		return
	}
	uid := r.PostFormValue("uid")
	if uid == "" {
		log.Printf("[proxy recognize] No UID found")
		respondError(w, http.StatusBadRequest, "No UID found in proxy request")
		return
	}

	img, file, err := openImage(fh)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: recognizeMessages.internal, Details: err.Error()})
		return
	}
	defer file.Close()

	log.Printf("[proxy recognize] Forwarding %s (%d bytes)", sanitizeForLog(fh.Filename), fh.Size)

	ctx := context.WithoutCancel(r.Context())
	resp, err := h.client.Recognize(ctx, uid, img)
	if err != nil {
		logUpstreamError("proxy recognize", err)
		respondUpstreamError(w, err, recognizeMessages)
		return
	}
	defer resp.Body.Close()

	log.Printf("[proxy recognize] Backend responded with status %d", resp.StatusCode)
	streamResponse(w, resp)
}

// streamResponse relays a streamed upstream response. The first byte is read
// before any header is committed so an immediate stream failure can still be
// reported as a JSON error. A failure after that aborts the connection.
func streamResponse(w http.ResponseWriter, resp *http.Response) {
	success := resp.StatusCode >= 200 && resp.StatusCode < 300

	body := bufio.NewReader(resp.Body)
	if _, err := body.Peek(1); err != nil {
		if !errors.Is(err, io.EOF) {
			log.Printf("[proxy recognize] Stream error before headers were sent: %v", err)
			respondError(w, http.StatusInternalServerError, "Stream error from backend API")
			return
		}
		if !success {
			faceapi.RelayHeaders(resp.Header, w.Header())
			respondJSON(w, resp.StatusCode, rejectionFallback(resp.StatusCode, recognizeMessages.rejected))
			return
		}
	}

	faceapi.RelayHeaders(resp.Header, w.Header())
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
		if !success {
			contentType = "application/json"
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, body); err != nil {
		log.Printf("[proxy recognize] Stream error after headers were sent: %v", err)
		panic(http.ErrAbortHandler)
	}
}

// ListFaces relays the caller's face list from the upstream API.
func (h *ProxyHandler) ListFaces(w http.ResponseWriter, r *http.Request) {
	uid := middleware.IdentityFromContext(r.Context())

	ctx := context.WithoutCancel(r.Context())
	resp, err := h.client.ListFacesRaw(ctx, uid)
	if err != nil {
		logUpstreamError("proxy faces list", err)
		respondUpstreamError(w, err, listMessages)
		return
	}

	relayResponse(w, resp, listMessages.rejected)
}
