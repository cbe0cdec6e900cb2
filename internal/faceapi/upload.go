package faceapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// addImageToMultipart writes the image as the "image" part, keeping its original
// filename and content type.
func addImageToMultipart(writer *multipart.Writer, img Image) error {
	if img.Data == nil {
		return errors.New("image data is required")
	}

	filename := filepath.Base(img.Filename)
	if img.Filename == "" || filename == "." || filename == "/" {
		filename = "upload-" + uuid.NewString()
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return fmt.Errorf("could not create form file: %w", err)
	}
	if _, err := io.Copy(part, img.Data); err != nil {
		return fmt.Errorf("could not copy image data: %w", err)
	}
	return nil
}

// buildImageForm encodes optional text fields followed by the image.
func buildImageForm(fields map[string]string, img Image) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("could not write field %s: %w", name, err)
		}
	}
	if err := addImageToMultipart(writer, img); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("could not close writer: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}

// Register uploads a face image under name for uid. The upstream response is
// returned whatever its status.
func (c *Client) Register(ctx context.Context, uid, name string, img Image) (*Response, error) {
	body, contentType, err := buildImageForm(map[string]string{"name": name}, img)
	if err != nil {
		return nil, err
	}
	return c.doBuffered(ctx, "register", http.MethodPost, c.resolveURL("register"), uid, body, contentType, c.timeouts.upstream)
}

// Recognize uploads an image for recognition. The response body is left unread so
// binary results (such as audio) can be streamed; the caller must close it.
func (c *Client) Recognize(ctx context.Context, uid string, img Image) (*http.Response, error) {
	body, contentType, err := buildImageForm(nil, img)
	if err != nil {
		return nil, err
	}
	return c.doStream(ctx, "recognize", http.MethodPost, c.resolveURL("recognize"), uid, body, contentType, c.timeouts.recognize)
}
