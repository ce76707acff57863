package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "feedback <memory-id> <signal>",
		Short: "Report how useful a surfaced memory was (0..1)",
		Args:  cobra.ExactArgs(2),
		Run:   runFeedback,
	}

	RootCmd.AddCommand(cmd)
}

func runFeedback(cmd *cobra.Command, args []string) {
	signal, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		exitErr("feedback", err)
	}

	svc, s, _, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	mem, err := svc.RecordFeedback(cmd.Context(), args[0], signal)
	if err != nil {
		exitErr("feedback", err)
	}

	printJSON(mem)
}
