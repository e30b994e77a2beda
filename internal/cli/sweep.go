package cli

import (
	"fmt"

	"github.com/nadia/taskwise/internal/retention"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Prune idle conversations now",
	Long: `Run one retention sweep immediately, deleting conversations that
have been idle longer than the configured maximum age.`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	cfg := app.cfg.Retention
	if cfg.MaxAgeDays <= 0 {
		return fmt.Errorf("retention max age is not configured")
	}

	sweeper, err := retention.NewSweeper(app.store, cfg, app.log.GetZerolog())
	if err != nil {
		return err
	}

	deleted, err := sweeper.SweepOnce(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d idle conversation(s)\n", deleted)
	return nil
}
