package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/kozaktomas/face-portal/internal/config"
	"github.com/kozaktomas/face-portal/internal/faceapi"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var facesCmd = &cobra.Command{
	Use:   "faces",
	Short: "Manage registered faces",
	Long:  `List, register, recognize and delete faces directly against the face recognition API.`,
}

var facesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered faces",
	Long: `List all faces registered for an identity token.

Example:
  face-portal faces list --uid device-1
  face-portal faces list --uid device-1 --format yaml`,
	Args: cobra.NoArgs,
	RunE: runFacesList,
}

func init() {
	rootCmd.AddCommand(facesCmd)
	facesCmd.AddCommand(facesListCmd)

	facesCmd.PersistentFlags().String("uid", "", "Identity token sent to the face recognition API")
	facesListCmd.Flags().String("format", "table", "Output format: table, json, yaml")
}

// newFaceAPIClient creates an upstream client from config, honouring --capture.
func newFaceAPIClient(cfg *config.Config) (*faceapi.Client, error) {
	if err := cfg.RequireUpstream(); err != nil {
		return nil, err
	}
	client, err := faceapi.NewClientWithCapture(cfg.FaceRec.URL, captureDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create face API client: %w", err)
	}
	return client, nil
}

// loadFacesClient loads config and returns a client plus the --uid value.
func loadFacesClient(cmd *cobra.Command) (*config.Config, *faceapi.Client, string, error) {
	uid := mustGetString(cmd, "uid")
	if uid == "" {
		return nil, nil, "", errors.New("--uid is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	client, err := newFaceAPIClient(cfg)
	if err != nil {
		return nil, nil, "", err
	}
	return cfg, client, uid, nil
}

// faceRow is a face entry as printed by the CLI.
type faceRow struct {
	ID   any    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// rowID keeps numeric ids numeric in json and yaml output.
func rowID(id faceapi.FaceID) any {
	if !id.Valid() {
		return nil
	}
	if id.IsNumeric() {
		if n, err := strconv.ParseInt(id.String(), 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(id.String(), 64); err == nil {
			return f
		}
	}
	return id.String()
}

func faceRows(entries []faceapi.FaceEntry) []faceRow {
	rows := make([]faceRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, faceRow{ID: rowID(e.ID), Name: e.Name})
	}
	return rows
}

func runFacesList(cmd *cobra.Command, args []string) error {
	format := mustGetString(cmd, "format")
	switch format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (use table, json or yaml)", format)
	}

	_, client, uid, err := loadFacesClient(cmd)
	if err != nil {
		return err
	}

	entries, err := client.ListFaces(context.Background(), uid)
	if err != nil {
		return fmt.Errorf("failed to list faces: %w", err)
	}

	rows := faceRows(entries)
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No faces found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	fmt.Fprintln(w, "--\t----")
	for _, e := range entries {
		id := e.ID.String()
		if !e.ID.Valid() {
			id = "-"
		}
		fmt.Fprintf(w, "%s\t%s\n", id, e.Name)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d faces\n", len(entries))
	return nil
}
