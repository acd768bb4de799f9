package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mycustomai/wizard/internal/api"
	"github.com/mycustomai/wizard/internal/genai"
	"github.com/mycustomai/wizard/internal/store"
	"github.com/mycustomai/wizard/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for wizard state data
	DefaultStateDir = "/var/lib/wizard"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "wizard.db"
	// DefaultAPIBaseURL is where the interactive session reaches the API server
	DefaultAPIBaseURL = "http://localhost:8080"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	genaiOpts := buildGenAIOptions(flags)
	apiOpts := buildAPIOptions(flags)

	if *flags.interactive {
		storeOpts := buildStoreOptions(flags)
		if err := runInteractive(*flags.apiURL, *flags.sessionID, storeOpts); err != nil {
			slog.Error("Interactive session failed", "error", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("Bootstrapping wizard API server")
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "api_addr", *flags.apiAddr)
	if err := api.Run(genaiOpts, apiOpts); err != nil {
		slog.Error("Wizard API server failed to run", "error", err)
		os.Exit(1)
	}
}

// Config holds environment configuration
type Config struct {
	DatabaseURL  string
	StateDir     string
	OpenAIKey    string
	OpenAIModel  string
	SummaryModel string
	APIAddr      string
	APIBaseURL   string
	Origins      string
}

// Flags holds command line flag values
type Flags struct {
	stateDir     *string
	dbDSN        *string
	openaiKey    *string
	openaiModel  *string
	summaryModel *string
	apiAddr      *string
	origins      *string
	interactive  *bool
	apiURL       *string
	sessionID    *string
}

// initializeLogger sets up structured logging. WIZARD_DEBUG=true raises the
// level to debug.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("WIZARD_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		StateDir:     util.GetenvDefault("WIZARD_STATE_DIR", DefaultStateDir),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  os.Getenv("OPENAI_MODEL"),
		SummaryModel: os.Getenv("OPENAI_SUMMARY_MODEL"),
		APIAddr:      os.Getenv("API_ADDR"),
		APIBaseURL:   util.GetenvDefault("API_BASE_URL", DefaultAPIBaseURL),
		Origins:      os.Getenv("ALLOWED_ORIGINS"),
	}

	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No DATABASE_URL provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"WIZARD_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"API_BASE_URL", config.APIBaseURL)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for wizard data (overrides $WIZARD_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseURL, "database DSN for the session store (overrides $DATABASE_URL)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		openaiModel:  flag.String("openai-model", config.OpenAIModel, "primary chat model (overrides $OPENAI_MODEL)"),
		summaryModel: flag.String("summary-model", config.SummaryModel, "answer-analysis model (overrides $OPENAI_SUMMARY_MODEL)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		origins:      flag.String("allowed-origins", config.Origins, "comma-separated CORS origins (overrides $ALLOWED_ORIGINS)"),
		interactive:  flag.Bool("interactive", false, "run a terminal wizard session against a running API server"),
		apiURL:       flag.String("api-url", config.APIBaseURL, "API server base URL for interactive mode (overrides $API_BASE_URL)"),
		sessionID:    flag.String("session", "", "session ID to resume in interactive mode"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"interactive", *flags.interactive,
		"apiURL", *flags.apiURL)

	// Follow an overridden state directory when the DSN was left at its
	// state-dir-derived default.
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		stateDir := filepath.Dir(*flags.dbDSN)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildGenAIOptions constructs GenAI configuration options
func buildGenAIOptions(flags Flags) []genai.Option {
	var genaiOpts []genai.Option
	if *flags.openaiKey != "" {
		genaiOpts = append(genaiOpts, genai.WithAPIKey(*flags.openaiKey))
	}
	if *flags.openaiModel != "" {
		genaiOpts = append(genaiOpts, genai.WithModel(*flags.openaiModel))
	}
	if *flags.summaryModel != "" {
		genaiOpts = append(genaiOpts, genai.WithSummaryModel(*flags.summaryModel))
	}
	return genaiOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.origins != "" {
		apiOpts = append(apiOpts, api.WithAllowedOrigins(strings.Split(*flags.origins, ",")))
	}
	return apiOpts
}
