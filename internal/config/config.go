package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/bracket-harvest/internal/domain/matchset"
	"github.com/riskibarqy/bracket-harvest/internal/domain/tournament"
	"github.com/riskibarqy/bracket-harvest/internal/platform/logging"
)

// Config stores runtime configuration for the harvest and export commands.
type Config struct {
	AppEnv                       string
	ServiceName                  string
	ServiceVersion               string
	LogLevel                     logging.Level
	LogFormat                    string
	DBURL                        string
	DBDisablePreparedBinary      bool
	StartGGBaseURL               string
	StartGGToken                 string
	StartGGTimeout               time.Duration
	StartGGMaxAttempts           int
	StartGGRetryDelay            time.Duration
	StartGGRatePerMinute         int
	StartGGCircuitEnabled        bool
	StartGGCircuitFailureCount   int
	StartGGCircuitOpenTimeout    time.Duration
	StartGGCircuitHalfOpenMaxReq int
	StartGGVideogameID           int64
	StartGGTournamentsPerPage    int
	StartGGSetsPerPage           int
	HarvestSetCommitBatch        int
	HarvestSideMode              matchset.SideKind
	HarvestEventDenylist         []string
	HarvestEventURLBase          string
	ExportOutputDir              string
	UptraceEnabled               bool
	UptraceDSN                   string
	UptraceLogsEnabled           bool
	PyroscopeEnabled             bool
	PyroscopeServerAddress       string
	PyroscopeAppName             string
	PyroscopeAuthToken           string
	PyroscopeBasicAuthUser       string
	PyroscopeBasicAuthPassword   string
	PyroscopeUploadRate          time.Duration
}

// Load reads configuration from the environment after applying a .env file
// from the working directory when one exists. Variables already set win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logFormat := strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", "json")))
	if logFormat != "json" && logFormat != "console" {
		return Config{}, fmt.Errorf("invalid LOG_FORMAT %q: valid values are json, console", logFormat)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	startGGTimeout, err := time.ParseDuration(getEnv("STARTGG_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STARTGG_TIMEOUT: %w", err)
	}
	if startGGTimeout <= 0 {
		return Config{}, fmt.Errorf("STARTGG_TIMEOUT must be > 0")
	}
	startGGMaxAttempts, err := getEnvAsInt("STARTGG_MAX_ATTEMPTS", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse STARTGG_MAX_ATTEMPTS: %w", err)
	}
	if startGGMaxAttempts < 1 {
		return Config{}, fmt.Errorf("STARTGG_MAX_ATTEMPTS must be >= 1")
	}
	startGGRetryDelay, err := time.ParseDuration(getEnv("STARTGG_RETRY_DELAY", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STARTGG_RETRY_DELAY: %w", err)
	}
	if startGGRetryDelay < 0 {
		return Config{}, fmt.Errorf("STARTGG_RETRY_DELAY must be >= 0")
	}
	startGGRatePerMinute, err := getEnvAsInt("STARTGG_RATE_PER_MINUTE", 80)
	if err != nil {
		return Config{}, fmt.Errorf("parse STARTGG_RATE_PER_MINUTE: %w", err)
	}
	if startGGRatePerMinute < 0 {
		return Config{}, fmt.Errorf("STARTGG_RATE_PER_MINUTE must be >= 0")
	}

	startGGCircuitEnabled, err := strconv.ParseBool(getEnv("STARTGG_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STARTGG_CIRCUIT_ENABLED: %w", err)
	}
	startGGCircuitFailureCount, err := getEnvAsInt("STARTGG_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse STARTGG_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if startGGCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("STARTGG_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	startGGCircuitOpenTimeout, err := time.ParseDuration(getEnv("STARTGG_CIRCUIT_OPEN_TIMEOUT", "2m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STARTGG_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if startGGCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("STARTGG_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	startGGCircuitHalfOpenMaxReq, err := getEnvAsInt("STARTGG_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse STARTGG_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if startGGCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("STARTGG_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	videogameID, err := strconv.ParseInt(getEnv("STARTGG_VIDEOGAME_ID", "1386"), 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse STARTGG_VIDEOGAME_ID: %w", err)
	}
	if videogameID <= 0 {
		return Config{}, fmt.Errorf("STARTGG_VIDEOGAME_ID must be > 0")
	}
	tournamentsPerPage, err := getEnvAsInt("STARTGG_TOURNAMENTS_PER_PAGE", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse STARTGG_TOURNAMENTS_PER_PAGE: %w", err)
	}
	setsPerPage, err := getEnvAsInt("STARTGG_SETS_PER_PAGE", 40)
	if err != nil {
		return Config{}, fmt.Errorf("parse STARTGG_SETS_PER_PAGE: %w", err)
	}
	if tournamentsPerPage < 1 || setsPerPage < 1 {
		return Config{}, fmt.Errorf("STARTGG_TOURNAMENTS_PER_PAGE and STARTGG_SETS_PER_PAGE must be >= 1")
	}

	setCommitBatch, err := getEnvAsInt("HARVEST_SET_COMMIT_BATCH", 25)
	if err != nil {
		return Config{}, fmt.Errorf("parse HARVEST_SET_COMMIT_BATCH: %w", err)
	}
	if setCommitBatch < 1 {
		return Config{}, fmt.Errorf("HARVEST_SET_COMMIT_BATCH must be >= 1")
	}
	sideMode, err := matchset.ParseSideKind(strings.ToLower(strings.TrimSpace(getEnv("HARVEST_SIDE_MODE", string(matchset.SideTeam)))))
	if err != nil {
		return Config{}, fmt.Errorf("parse HARVEST_SIDE_MODE: %w", err)
	}
	denylist := tournament.DefaultDenylist
	if raw, ok := os.LookupEnv("HARVEST_EVENT_DENYLIST"); ok {
		denylist = splitCSV(raw)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                       appEnv,
		ServiceName:                  getEnv("APP_SERVICE_NAME", "bracket-harvest"),
		ServiceVersion:               getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                     logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:                    logFormat,
		DBURL:                        strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:      dbDisablePreparedBinary,
		StartGGBaseURL:               strings.TrimSpace(getEnv("STARTGG_BASE_URL", "https://api.start.gg/gql/alpha")),
		StartGGToken:                 strings.TrimSpace(getEnv("STARTGG_TOKEN", "")),
		StartGGTimeout:               startGGTimeout,
		StartGGMaxAttempts:           startGGMaxAttempts,
		StartGGRetryDelay:            startGGRetryDelay,
		StartGGRatePerMinute:         startGGRatePerMinute,
		StartGGCircuitEnabled:        startGGCircuitEnabled,
		StartGGCircuitFailureCount:   startGGCircuitFailureCount,
		StartGGCircuitOpenTimeout:    startGGCircuitOpenTimeout,
		StartGGCircuitHalfOpenMaxReq: startGGCircuitHalfOpenMaxReq,
		StartGGVideogameID:           videogameID,
		StartGGTournamentsPerPage:    tournamentsPerPage,
		StartGGSetsPerPage:           setsPerPage,
		HarvestSetCommitBatch:        setCommitBatch,
		HarvestSideMode:              sideMode,
		HarvestEventDenylist:         denylist,
		HarvestEventURLBase:          strings.TrimSpace(getEnv("HARVEST_EVENT_URL_BASE", "https://start.gg")),
		ExportOutputDir:              strings.TrimSpace(getEnv("EXPORT_OUTPUT_DIR", "output")),
		UptraceEnabled:               uptraceEnabled,
		UptraceDSN:                   uptraceDSN,
		UptraceLogsEnabled:           uptraceLogsEnabled,
		PyroscopeEnabled:             pyroscopeEnabled,
		PyroscopeServerAddress:       pyroscopeServerAddress,
		PyroscopeAuthToken:           strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:       strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:   strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:          pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	return cfg, nil
}

// RequireDB reports a missing database URL for commands that persist.
func (c Config) RequireDB() error {
	if c.DBURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	return nil
}

func (c Config) RequireStartGG() error {
	if c.StartGGToken == "" {
		return fmt.Errorf("STARTGG_TOKEN is required")
	}
	if c.StartGGBaseURL == "" {
		return fmt.Errorf("STARTGG_BASE_URL cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
