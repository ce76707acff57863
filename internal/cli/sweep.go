package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mnemo-ai/mnemo/internal/feedback"
)

func init() {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evict low-value memories",
		Long:  "Runs one eviction sweep, or a periodic one with --every. Low-importance stale memories are soft-deleted; abandoned synthetic memories are hard-deleted.",
		Run:   runSweep,
	}

	cmd.Flags().StringP("owner", "o", "", "Sweep only this owner (default: all)")
	cmd.Flags().Duration("every", 0, "Keep running, sweeping at this interval (0 = the configured sweep.interval)")

	RootCmd.AddCommand(cmd)
}

func runSweep(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")
	every, _ := cmd.Flags().GetDuration("every")

	s, cfg, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	manager := feedback.New(s, sweepPolicy(cfg))

	if cmd.Flags().Changed("every") {
		interval := every
		if interval <= 0 {
			interval = cfg.Sweep.Interval
		}
		if interval <= 0 {
			interval = 24 * time.Hour
		}
		log := slog.New(slog.NewTextHandler(os.Stderr, nil))
		feedback.NewRunner(manager, interval, log).Run(cmd.Context())
		return
	}

	res, err := manager.Sweep(cmd.Context(), owner)
	if err != nil {
		exitErr("sweep", err)
	}

	printJSON(res)
}
