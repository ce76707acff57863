package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export memories as JSON",
		Long:  "Writes all memories (including soft-deleted ones, for audit) to stdout as a JSON array.",
		Run:   runExport,
	}

	cmd.Flags().StringP("owner", "o", "", "Export only this owner")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")

	s, _, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	memories, err := s.ExportAll(cmd.Context(), owner)
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(memories, "", "  ")
	fmt.Println(string(b))
}
