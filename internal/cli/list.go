package cli

import (
	"github.com/spf13/cobra"

	"github.com/mnemo-ai/mnemo/internal/model"
	"github.com/mnemo-ai/mnemo/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memories",
		Run:   runList,
	}

	cmd.Flags().StringP("owner", "o", "", "Owner id")
	cmd.Flags().StringP("kind", "k", "", "Comma-separated kinds")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tags (any match)")
	cmd.Flags().StringP("match", "m", "", "Substring to search in content and tags")
	cmd.Flags().Bool("inactive", false, "Include soft-deleted memories")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")
	kindStr, _ := cmd.Flags().GetString("kind")
	tagsStr, _ := cmd.Flags().GetString("tags")
	match, _ := cmd.Flags().GetString("match")
	inactive, _ := cmd.Flags().GetBool("inactive")
	limit, _ := cmd.Flags().GetInt("limit")

	s, _, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if match != "" {
		var kind model.Kind
		if kinds := splitList(kindStr); len(kinds) > 0 {
			kind = model.Kind(kinds[0])
		}
		results, err := s.Search(cmd.Context(), store.SearchParams{
			OwnerID: owner,
			Query:   match,
			Kind:    kind,
			Limit:   limit,
		})
		if err != nil {
			exitErr("search", err)
		}
		printMemories(results)
		return
	}

	p := store.ListParams{
		OwnerID:         owner,
		Tags:            splitList(tagsStr),
		IncludeInactive: inactive,
		Limit:           limit,
	}
	for _, k := range splitList(kindStr) {
		p.Kinds = append(p.Kinds, model.Kind(k))
	}

	memories, err := s.List(cmd.Context(), p)
	if err != nil {
		exitErr("list", err)
	}

	printMemories(memories)
}
