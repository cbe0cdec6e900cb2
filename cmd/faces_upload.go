package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kozaktomas/face-portal/internal/constants"
	"github.com/kozaktomas/face-portal/internal/faceapi"
	"github.com/spf13/cobra"
)

var facesRegisterCmd = &cobra.Command{
	Use:   "register <image>",
	Short: "Register a face image under a name",
	Long: `Upload a face image and register it under a name.

Example:
  face-portal faces register --uid device-1 --name "Ann" ann.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runFacesRegister,
}

var facesRecognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Recognize faces in an image",
	Long: `Upload an image for recognition and stream the result.

The result is written to --out, or to stdout when no file is given.
The upstream Result, X-Response-Type and X-Response-Text headers are
printed to stderr.

Example:
  face-portal faces recognize --uid device-1 frame.png --out answer.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runFacesRecognize,
}

func init() {
	facesCmd.AddCommand(facesRegisterCmd)
	facesCmd.AddCommand(facesRecognizeCmd)

	facesRegisterCmd.Flags().String("name", "", "Name to register the face under")
	facesRecognizeCmd.Flags().String("out", "", "Write the result to this file instead of stdout")
}

// openImageFile opens path as an upload. The caller must close the returned file.
func openImageFile(path string) (faceapi.Image, *os.File, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return faceapi.Image{}, nil, fmt.Errorf("failed to open image: %w", err)
	}
	return faceapi.Image{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        f,
	}, f, nil
}

// printRelayedHeaders prints the custom upstream headers that are set.
func printRelayedHeaders(w io.Writer, header http.Header) {
	for _, name := range constants.RelayedHeaders {
		if v := header.Get(name); v != "" {
			fmt.Fprintf(w, "%s: %s\n", name, v)
		}
	}
}

func runFacesRegister(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")
	if name == "" {
		return errors.New("--name is required")
	}

	_, client, uid, err := loadFacesClient(cmd)
	if err != nil {
		return err
	}

	img, f, err := openImageFile(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	resp, err := client.Register(context.Background(), uid, name, img)
	if err != nil {
		return fmt.Errorf("failed to register face: %w", err)
	}

	fmt.Printf("Status: %d\n", resp.StatusCode)
	printRelayedHeaders(os.Stdout, resp.Header)
	if len(resp.Body) > 0 {
		fmt.Println(string(resp.Body))
	}
	if !resp.IsSuccess() {
		return &faceapi.StatusError{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}
	}
	return nil
}

func runFacesRecognize(cmd *cobra.Command, args []string) error {
	outPath := mustGetString(cmd, "out")

	_, client, uid, err := loadFacesClient(cmd)
	if err != nil {
		return err
	}

	img, f, err := openImageFile(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	resp, err := client.Recognize(context.Background(), uid, img)
	if err != nil {
		return fmt.Errorf("failed to recognize: %w", err)
	}
	defer resp.Body.Close()

	fmt.Fprintf(os.Stderr, "Status: %d\n", resp.StatusCode)
	fmt.Fprintf(os.Stderr, "Content-Type: %s\n", resp.Header.Get("Content-Type"))
	printRelayedHeaders(os.Stderr, resp.Header)

	var out io.Writer = os.Stdout
	if outPath != "" {
		file, err := os.Create(outPath) //nolint:gosec // path comes from the command line
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		out = file
	}

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("stream error from backend API: %w", err)
	}
	if outPath != "" {
		fmt.Fprintf(os.Stderr, "Wrote %d bytes to %s\n", n, outPath)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("recognition failed with status %d", resp.StatusCode)
	}
	return nil
}
