package cli

import (
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/mnemo-ai/mnemo/internal/synth"
)

func init() {
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Maybe generate a synthetic continuity memory",
		Long:  "Applies the trust/randomness policy and, when it passes, stores one fabricated continuity memory tagged as generated. Prints null when the policy skips.",
		Run:   runSynth,
	}

	cmd.Flags().StringP("owner", "o", "", "Owner id (required)")
	cmd.Flags().Float64("trust", 0, "Owner trust level 0..10")
	cmd.Flags().String("tone", "", "Tone hint: supportive, encouraging, empathetic")
	cmd.Flags().Int64("seed", 0, "Random seed (0 = time-based)")

	cmd.MarkFlagRequired("owner")

	RootCmd.AddCommand(cmd)
}

func runSynth(cmd *cobra.Command, args []string) {
	owner, _ := cmd.Flags().GetString("owner")
	trust, _ := cmd.Flags().GetFloat64("trust")
	tone, _ := cmd.Flags().GetString("tone")
	seed, _ := cmd.Flags().GetInt64("seed")

	s, cfg, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}

	policy := synth.DefaultPolicy()
	if cfg.Synthetic.TrustThreshold > 0 {
		policy.TrustThreshold = cfg.Synthetic.TrustThreshold
	}
	if cfg.Synthetic.Probability > 0 {
		policy.Probability = cfg.Synthetic.Probability
	}

	mem, err := synth.New(s, policy, rng).MaybeGenerate(cmd.Context(), owner, trust, tone)
	if err != nil {
		exitErr("synth", err)
	}

	printJSON(mem)
}
