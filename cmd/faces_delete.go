package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/kozaktomas/face-portal/internal/faceapi"
	"github.com/kozaktomas/face-portal/internal/facedelete"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var facesDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete every face registered under a name",
	Long: `Delete all face entries whose name matches exactly.

Each matching entry is deleted individually. A failed delete does not stop
the others; failures are listed at the end.

Example:
  face-portal faces delete --uid device-1 --name "Ann"
  face-portal faces delete --uid device-1 --name "Ann" --concurrency 4 --yes`,
	Args: cobra.NoArgs,
	RunE: runFacesDelete,
}

func init() {
	facesCmd.AddCommand(facesDeleteCmd)

	facesDeleteCmd.Flags().String("name", "", "Name whose entries are deleted")
	facesDeleteCmd.Flags().Int("concurrency", 0, "Parallel deletes (defaults to DELETE_CONCURRENCY)")
	facesDeleteCmd.Flags().Bool("yes", false, "Skip confirmation prompt")
}

func runFacesDelete(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")
	if name == "" {
		return errors.New("--name is required")
	}
	skipConfirm := mustGetBool(cmd, "yes")

	cfg, client, uid, err := loadFacesClient(cmd)
	if err != nil {
		return err
	}
	concurrency := cfg.Delete.Concurrency
	if n := mustGetInt(cmd, "concurrency"); n > 0 {
		concurrency = n
	}

	ctx := context.Background()

	// Preview what will be deleted
	entries, err := client.ListFaces(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to list faces: %w", err)
	}
	ids := facedelete.MatchingIDs(entries, name)
	if len(ids) == 0 {
		fmt.Printf("No faces found with name '%s' to delete.\n", name)
		return nil
	}

	if !skipConfirm {
		fmt.Printf("Delete %d face(s) named '%s'? [y/N]: ", len(ids), name)
		reader := bufio.NewReader(os.Stdin)
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	bar := progressbar.NewOptions(len(ids),
		progressbar.OptionSetDescription("Deleting faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	deleter := facedelete.New(client,
		facedelete.WithConcurrency(concurrency),
		facedelete.WithProgress(func(faceapi.FaceID, error) { bar.Add(1) }),
	)

	result, err := deleter.DeleteByName(ctx, uid, name)
	bar.Finish()
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to delete faces: %w", err)
	}

	return printDeleteResult(result)
}

func printDeleteResult(result *facedelete.Result) error {
	switch result.Outcome {
	case facedelete.NoneMatched:
		fmt.Printf("No faces found with name '%s' to delete.\n", result.Name)
		return nil
	case facedelete.AllDeleted:
		fmt.Printf("Successfully deleted %d entries for name '%s'.\n", result.Deleted, result.Name)
		return nil
	}

	fmt.Printf("Deleted %d of %d entries for name '%s'. Failures:\n", result.Deleted, len(result.Attempted), result.Name)
	for _, f := range result.Failures {
		fmt.Printf("  - %s: status %d: %s\n", f.ID, f.Status, f.Error)
	}
	return fmt.Errorf("%d deletion(s) failed", len(result.Failures))
}
