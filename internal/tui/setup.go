package tui

import (
	"fmt"
	"net/url"

	"fintrack/internal/config"
	"fintrack/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the fields the setup wizard edits.
type SetupValues struct {
	APIURL  string
	Backend string
	Theme   string
}

func setupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		APIURL:  cfg.API.BaseURL,
		Backend: cfg.Store.Backend,
		Theme:   cfg.Appearance.Theme,
	}
}

// Apply copies the edited values onto cfg.
func (v SetupValues) Apply(cfg config.Config) config.Config {
	cfg.API.BaseURL = v.APIURL
	cfg.Store.Backend = v.Backend
	cfg.Appearance.Theme = v.Theme
	return cfg
}

// NewSetupForm returns the first-run wizard bound to vals, seeded from cfg.
func NewSetupForm(cfg config.Config) (*huh.Form, *SetupValues) {
	vals := setupValuesFrom(cfg)
	return newSetupForm(&vals), &vals
}

func newSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fintrack").
				Description("Point fintrack at your transaction service and pick where\nfilters and budgets are kept. You can change these later\nin "+config.ConfigPath()+"."),
			huh.NewInput().
				Title("Transaction API base URL").
				Placeholder("http://localhost:8080/api").
				Value(&vals.APIURL).
				Validate(validateAPIURL),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Local state store").
				Options(
					huh.NewOption("SQLite database", config.BackendSQLite),
					huh.NewOption("TOML file", config.BackendFile),
					huh.NewOption("In memory (not saved)", config.BackendMemory),
				).
				Value(&vals.Backend),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeDracula())
}

func validateAPIURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("enter an absolute URL like http://localhost:8080/api")
	}
	return nil
}
