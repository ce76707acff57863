package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemo-ai/mnemo/internal/extract"
)

func init() {
	cmd := &cobra.Command{
		Use:   "record [utterance]",
		Short: "Record a conversation turn",
		Long:  "Extract insights from one utterance and merge them into the owner's memories. Utterance can be a positional arg or piped via stdin.",
		Run:   runRecord,
	}

	cmd.Flags().StringP("owner", "o", "", "Owner id (required)")
	cmd.Flags().StringP("emotion", "e", "", "Detected emotion for this turn")

	cmd.MarkFlagRequired("owner")

	RootCmd.AddCommand(cmd)
}

func runRecord(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")
	emotion, _ := cmd.Flags().GetString("emotion")

	var utterance string
	if len(args) > 0 {
		utterance = strings.Join(args, " ")
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitErr("read stdin", err)
			}
			utterance = string(b)
		}
	}

	if strings.TrimSpace(utterance) == "" {
		exitErr("record", fmt.Errorf("utterance is required (positional arg or stdin)"))
	}

	svc, s, _, err := openService()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	touched, err := svc.RecordTurn(cmd.Context(), owner, utterance, extract.TurnContext{Emotion: emotion})
	if err != nil {
		exitErr("record", err)
	}

	printMemories(touched)
}
