package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	cmd.Flags().StringP("owner", "o", "", "Limit to one owner")

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")

	s, cfg, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	st, err := s.Stats(cmd.Context(), cfg.DBPath, owner)
	if err != nil {
		exitErr("stats", err)
	}

	printJSON(st)
}
