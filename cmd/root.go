package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack/internal/api"
	"fintrack/internal/config"
	"fintrack/internal/kv"
	"fintrack/internal/logger"
	"fintrack/internal/model"
	"fintrack/internal/prefs"
	"fintrack/internal/store"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagMonth   string
	flagAPI     string
	flagStore   string
	flagQuiet   bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "fintrack",
	Short:         "Personal finance tracker",
	Long:          "Track transactions, monthly summaries, and budgets against a /api/tx backend.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagMonth, "month", "m", "", "Month to show (YYYY-MM, default: last used or current)")
	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "State backend: sqlite, file, or memory")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log requests and state access")
}

// session bundles what every command needs: config, backend client, local
// state, and a logger.
type session struct {
	cfg    config.Config
	client *api.Client
	state  kv.Store
	log    zerolog.Logger
}

// openSession loads config, applies flag overrides, and opens local state.
// State is best-effort: if the configured backend cannot be opened the
// session falls back to an in-memory store and warns.
func openSession() (*session, error) {
	log := logger.New(logger.LevelFor(flagVerbose))

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagAPI != "" {
		cfg.API.BaseURL = flagAPI
	}
	if flagStore != "" {
		cfg.Store.Backend = flagStore
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	state, err := openStore(cfg)
	if err != nil {
		log.Warn().Err(err).Str("backend", cfg.Store.Backend).Msg("state unavailable, using memory")
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  State store unavailable, preferences will not persist\n")
		}
		state = kv.NewMemory()
	}

	client := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger.Component(log, "api")),
	)

	return &session{cfg: cfg, client: client, state: state, log: log}, nil
}

func (s *session) Close() {
	if err := s.state.Close(); err != nil {
		s.log.Debug().Err(err).Msg("closing state")
	}
}

func openStore(cfg config.Config) (kv.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		return kv.NewMemory(), nil
	case config.BackendFile:
		return kv.OpenFile(cfg.StorePath())
	default:
		return store.Open(cfg.StorePath())
	}
}

// filters returns the persisted list filters. Read failures are logged and
// treated as no saved filters.
func (s *session) filters() prefs.Filters {
	f, err := prefs.LoadFilters(s.state)
	if err != nil {
		s.log.Debug().Err(err).Msg("loading filters")
	}
	return f
}

// saveFilters persists f, swallowing failures.
func (s *session) saveFilters(f prefs.Filters) {
	if err := prefs.SaveFilters(s.state, f); err != nil {
		s.log.Debug().Err(err).Msg("saving filters")
	}
}

// month resolves the active month: --month, then the saved month, then now.
func (s *session) month(f prefs.Filters) (model.Month, error) {
	if flagMonth != "" {
		return model.ParseMonth(flagMonth)
	}
	if f.Month != "" {
		if m, err := model.ParseMonth(f.Month); err == nil {
			return m, nil
		}
	}
	return model.MonthOf(time.Now()), nil
}

// rememberMonth persists m as the active month when it changed, resetting
// the date range to the whole month.
func (s *session) rememberMonth(f prefs.Filters, m model.Month) prefs.Filters {
	if f.Month == m.String() {
		return f
	}
	f = f.WithMonth(m)
	s.saveFilters(f)
	return f
}

func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}
