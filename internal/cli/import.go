package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all data with a snapshot file",
	Long:  "Validates the snapshot, then replaces every plan, execution and action in one transaction. Nothing changes when validation fails.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer f.Close()

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := a.Services.Snapshots.Decode(f)
	if err != nil {
		return err
	}
	res, err := a.Services.Snapshots.Import(ctx, doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %d plans and %d executions\n", res.PlansRestored, res.ExecutionsRestored)
	return nil
}
