// Package cli implements the mnemo CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mnemo-ai/mnemo/internal/config"
	"github.com/mnemo-ai/mnemo/internal/feedback"
	"github.com/mnemo-ai/mnemo/internal/memory"
	"github.com/mnemo-ai/mnemo/internal/model"
	"github.com/mnemo-ai/mnemo/internal/store"
)

var (
	dbPath     string
	configPath string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "mnemo",
	Short: "Scored conversational memory for chat agents",
	Long:  "Extracts typed facts from conversation turns, stores them per owner, and retrieves them by relevance. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $MNEMO_DB or ~/.mnemo/memory.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: $MNEMO_CONFIG if set)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("MNEMO_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func openStore() (*store.SQLiteStore, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	s, err := store.NewSQLiteStore(cfg.DBPath)
	return s, cfg, err
}

func sweepPolicy(cfg config.Config) feedback.Policy {
	p := feedback.DefaultPolicy()
	if cfg.Sweep.StaleAfterDays > 0 {
		p.StaleAfter = daysToDuration(cfg.Sweep.StaleAfterDays)
	}
	if cfg.Sweep.MaxImportance > 0 {
		p.MaxImportance = cfg.Sweep.MaxImportance
	}
	if cfg.Sweep.MaxEffectiveness > 0 {
		p.MaxEffectiveness = cfg.Sweep.MaxEffectiveness
	}
	if cfg.Sweep.SyntheticMaxAccess > 0 {
		p.SyntheticMaxAccess = cfg.Sweep.SyntheticMaxAccess
	}
	return p
}

func openService() (*memory.Service, *store.SQLiteStore, config.Config, error) {
	s, cfg, err := openStore()
	if err != nil {
		return nil, nil, cfg, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return memory.New(s, sweepPolicy(cfg), log), s, cfg, nil
}

func daysToDuration(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

func printJSON(v interface{}) {
	b, _ := json.Marshal(v)
	fmt.Println(string(b))
}

// printMemories honors --format for the commands whose output is a
// memory list; everything else stays JSON.
func printMemories(memories []model.Memory) {
	if formatFlag != "text" {
		printJSON(memories)
		return
	}
	for _, m := range memories {
		tags := ""
		if len(m.Tags) > 0 {
			tags = " [" + strings.Join(m.Tags, ",") + "]"
		}
		fmt.Printf("%s  %-18s i=%-2d %s%s\n", m.ID, m.Kind, m.Emotional.Importance, m.Content, tags)
	}
}
