package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BTreeMap/CoachPipe/internal/api"
	"github.com/BTreeMap/CoachPipe/internal/coach"
	"github.com/BTreeMap/CoachPipe/internal/flow"
	"github.com/BTreeMap/CoachPipe/internal/genai"
	"github.com/BTreeMap/CoachPipe/internal/lockfile"
	"github.com/BTreeMap/CoachPipe/internal/store"
	"github.com/BTreeMap/CoachPipe/internal/util"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for CoachPipe state data
	DefaultStateDir = "/var/lib/coachpipe"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "coachpipe.db"
	// DefaultAPIAddr is the default API listen address
	DefaultAPIAddr = ":8080"
)

func main() {
	config := loadEnvironmentConfig()
	initializeLogger(config.Debug)

	flags := parseCommandLineFlags(config)

	// One CoachPipe process per state directory: the conversation flow
	// and the SQLite store both assume a single writer.
	lock, err := lockfile.Acquire(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to acquire state directory lock", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	genaiClient, err := genai.NewClient(genai.WithAPIKey(*flags.openaiKey), genai.WithModel(*flags.model))
	if err != nil {
		slog.Error("Failed to initialize GenAI client", "error", err)
		os.Exit(1)
	}

	engine := coach.NewEngine(genaiClient)
	if !engine.TestConnection(context.Background()) {
		slog.Warn("GenAI API connection test failed; coaching responses will fall back until it recovers")
	}

	sessions := flow.NewSessionStore()
	onboardingFlow := flow.NewOnboardingFlow(sessions)

	server := api.NewServer(st, onboardingFlow, engine)
	slog.Info("Bootstrapping CoachPipe", "api_addr", *flags.apiAddr, "state_dir", *flags.stateDir)
	if err := server.Run(*flags.apiAddr); err != nil {
		slog.Error("CoachPipe failed to run", "error", err)
		os.Exit(1)
	}
}

// Config holds environment configuration
type Config struct {
	StateDir    string
	DatabaseURL string
	DBDriver    string
	OpenAIKey   string
	OpenAIModel string
	APIAddr     string
	Debug       bool
}

// Flags holds command line flag values
type Flags struct {
	stateDir  *string
	dbDriver  *string
	dbDSN     *string
	openaiKey *string
	model     *string
	apiAddr   *string
}

// initializeLogger sets up structured logging.
func initializeLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	config := Config{
		StateDir:    os.Getenv("COACHPIPE_STATE_DIR"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBDriver:    os.Getenv("DB_DRIVER"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: os.Getenv("OPENAI_MODEL"),
		APIAddr:     util.GetEnvOrDefault("API_ADDR", DefaultAPIAddr),
		Debug:       util.ParseBoolEnv("COACHPIPE_DEBUG", false),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"COACHPIPE_STATE_DIR", config.StateDir,
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"DB_DRIVER", config.DBDriver,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"OPENAI_MODEL", config.OpenAIModel,
		"API_ADDR", config.APIAddr)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:  flag.String("state-dir", config.StateDir, "Directory for CoachPipe state data"),
		dbDriver:  flag.String("db-driver", config.DBDriver, "Database driver (sqlite3 or postgres)"),
		dbDSN:     flag.String("db-dsn", config.DatabaseURL, "Database DSN (file path for SQLite, URL for Postgres)"),
		openaiKey: flag.String("openai-key", config.OpenAIKey, "OpenAI API key"),
		model:     flag.String("openai-model", config.OpenAIModel, "OpenAI chat model"),
		apiAddr:   flag.String("api-addr", config.APIAddr, "API listen address"),
	}
	flag.Parse()
	return flags
}

// buildStore selects and initializes the persistence backend from flags.
func buildStore(flags Flags) (store.Store, error) {
	driver := *flags.dbDriver
	dsn := *flags.dbDSN

	if driver == "" {
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			driver = "postgres"
		} else {
			driver = "sqlite3"
		}
	}

	slog.Debug("Selecting store backend", "driver", driver, "dsn_set", dsn != "")
	if driver == "postgres" {
		return store.NewPostgresStore(store.WithDSN(dsn))
	}
	return store.NewSQLiteStore(store.WithDSN(dsn))
}
