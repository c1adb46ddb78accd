package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportOut    string
	exportUpload bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a full snapshot as JSON",
	Long:  "Writes the snapshot to --out (stdout when empty). With --upload the snapshot goes to the configured backup sinks instead.",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file")
	exportCmd.Flags().BoolVar(&exportUpload, "upload", false, "Upload to the configured backup sinks")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if exportUpload {
		if a.Backups == nil {
			return fmt.Errorf("no backup sinks configured (set BACKUP_DIR or BACKUP_S3_BUCKET)")
		}
		key, err := a.Backups.Upload(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", key)
		return nil
	}

	doc, err := a.Services.Snapshots.Export(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	data = append(data, '\n')
	if exportOut == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d plans and %d executions to %s\n", len(doc.Plans), len(doc.Executions), exportOut)
	return nil
}
