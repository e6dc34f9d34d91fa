// Package cmd implements the fintrack CLI commands.
package cmd

import (
	"fmt"
	"net/url"
	"os"
	"sort"

	"fintrack/internal/config"
	"fintrack/internal/store"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL: %s\n", cfg.API.BaseURL)
	fmt.Printf("    Timeout:  %s\n", cfg.Timeout())
	fmt.Println()

	fmt.Println("  [Store]")
	fmt.Printf("    Backend: %s\n", cfg.Store.Backend)
	if cfg.Store.Backend != config.BackendMemory {
		fmt.Printf("    Path:    %s\n", cfg.StorePath())
	}
	if cfg.Store.Backend == config.BackendSQLite {
		printStoredKeys(cfg.StorePath())
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Watch]")
	fmt.Printf("    Listen:   %s\n", cfg.Watch.Listen)
	fmt.Printf("    Interval: %s\n", cfg.Interval())
	if cfg.Watch.AMQPURL != "" {
		fmt.Printf("    AMQP:     %s (exchange %s)\n", redactURL(cfg.Watch.AMQPURL), cfg.Watch.AMQPExchange)
	} else {
		fmt.Println("    AMQP:     not configured")
	}
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Printf("  Problems: %v\n\n", err)
	}

	fmt.Println("  Run `fintrack setup` to reconfigure.")
	return nil
}

// printStoredKeys lists what the SQLite state database holds. A missing
// database is not created just to report on it.
func printStoredKeys(path string) {
	if _, err := os.Stat(path); err != nil {
		fmt.Println("    Saved:   nothing yet")
		return
	}
	db, err := store.Open(path)
	if err != nil {
		fmt.Printf("    Saved:   unreadable (%v)\n", err)
		return
	}
	defer func() { _ = db.Close() }()

	keys, err := db.Keys()
	if err != nil {
		fmt.Printf("    Saved:   unreadable (%v)\n", err)
		return
	}
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, k)
	}
	sort.Strings(names)
	if len(names) == 0 {
		fmt.Println("    Saved:   nothing yet")
	}
	for i, k := range names {
		label := "         "
		if i == 0 {
			label = "Saved:   "
		}
		fmt.Printf("    %s%-12s updated %s\n", label, k, keys[k].Local().Format("2006-01-02 15:04"))
	}
}

// redactURL hides any password in a connection URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparsable)"
	}
	return u.Redacted()
}
