package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-ai/mnemo/internal/model"
	"github.com/mnemo-ai/mnemo/internal/rank"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall",
		Short: "Retrieve the most relevant memories for an owner",
		Run:   runRecall,
	}

	cmd.Flags().StringP("owner", "o", "", "Owner id (required)")
	cmd.Flags().StringP("emotion", "e", "", "Filter by emotion captured with the memory")
	cmd.Flags().StringP("topics", "t", "", "Comma-separated topic tags")
	cmd.Flags().StringP("kind", "k", "", "Comma-separated kinds")
	cmd.Flags().IntP("limit", "l", 0, "Max results (default from config)")

	cmd.MarkFlagRequired("owner")

	RootCmd.AddCommand(cmd)
}

func runRecall(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")
	emotion, _ := cmd.Flags().GetString("emotion")
	topicsStr, _ := cmd.Flags().GetString("topics")
	kindStr, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")

	f := rank.Filter{Emotion: emotion, Topics: splitList(topicsStr)}
	for _, k := range splitList(kindStr) {
		f.Kinds = append(f.Kinds, model.Kind(k))
	}

	svc, s, cfg, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if limit <= 0 {
		limit = cfg.RecallLimit
	}

	memories, err := svc.RetrieveContext(cmd.Context(), owner, f, limit)
	if err != nil {
		exitErr("recall", err)
	}

	printMemories(memories)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
