package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete actions no plan or execution refers to",
	Args:  cobra.NoArgs,
	RunE:  runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	removed, err := a.Sweeper.Sweep(cmd.Context())
	if err != nil {
		return err
	}
	for _, act := range removed {
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s %q\n", act.ID, act.Name)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d unreferenced actions removed\n", len(removed))
	return nil
}
