package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Application configuration
	Port         string `long:"port" env:"PORT" default:"3000" description:"HTTP server port"`
	DataDir      string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for the sqlite database file"`
	SeedFile     string `long:"seed-file" env:"SEED_FILE" description:"Optional YAML file with campaigns to register at startup"`
	ScanInterval int    `long:"scan-interval" env:"SCAN_INTERVAL" default:"20" description:"Scan interval in minutes"`
	FetchDelayMs int    `long:"fetch-delay" env:"FETCH_DELAY_MS" default:"600" description:"Pause between upstream fetch calls in milliseconds"`

	// Reddit data sources
	RedditClientID     string `long:"reddit-client-id" env:"REDDIT_CLIENT_ID" description:"Reddit OAuth client ID (enables the authenticated source)"`
	RedditClientSecret string `long:"reddit-client-secret" env:"REDDIT_CLIENT_SECRET" description:"Reddit OAuth client secret"`
	BraveAPIKey        string `long:"brave-api-key" env:"BRAVE_API_KEY" description:"Brave Search API key (enables the search-proxy source)"`
	SearchLang         string `long:"search-lang" env:"SEARCH_LANG" description:"Search language hint for the search-proxy source (e.g. fr)"`

	// Response generation
	GeminiAPIKey string `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Gemini API key for reply generation"`
	GeminiModel  string `long:"gemini-model" env:"GEMINI_MODEL" default:"gemini-2.5-flash" description:"Gemini model used for reply generation"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"essaim-lead-scanner/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Paris)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:               raw.Port,
		DataDir:            raw.DataDir,
		SeedFile:           raw.SeedFile,
		ScanInterval:       raw.ScanInterval,
		FetchDelayMs:       raw.FetchDelayMs,
		RedditClientID:     raw.RedditClientID,
		RedditClientSecret: raw.RedditClientSecret,
		BraveAPIKey:        raw.BraveAPIKey,
		SearchLang:         raw.SearchLang,
		GeminiAPIKey:       raw.GeminiAPIKey,
		GeminiModel:        raw.GeminiModel,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Intended for tests.
func Set(cfg *Cfg) {
	globalCfg = cfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
