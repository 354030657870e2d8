package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables recognized by the crawler.
const (
	baseURLEnv        = "AI_NEWS_BASE_URL"
	ingestSecretEnv   = "INGEST_SECRET"
	sourcesLimitEnv   = "SOURCES_LIMIT"
	itemsPerSourceEnv = "ITEMS_PER_SOURCE"
	concurrencyEnv    = "CONCURRENCY"
	loopEnv           = "LOOP"
	loopIntervalEnv   = "LOOP_INTERVAL_MS"
	readerPrefixEnv   = "JINA_READER_PREFIX"
	anthropicKeyEnv   = "ANTHROPIC_API_KEY"
	anthropicModelEnv = "ANTHROPIC_MODEL"
	geminiKeyEnv      = "GEMINI_API_KEY"
	geminiModelEnv    = "GEMINI_MODEL"
	databaseDSNEnv    = "DATABASE_DSN"
	logLevelEnv       = "LOG_LEVEL"
	configPathEnv     = "CRAWLER_CONFIG"
)

const (
	defaultSourcesLimit   = 200
	defaultItemsPerSource = 20
	defaultConcurrency    = 5
	defaultLoopIntervalMS = 60000
	defaultReaderPrefix   = "https://r.jina.ai/"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
	defaultGeminiModel    = "gemini-2.0-flash"

	minLoopIntervalMS = 5000
	maxLoopIntervalMS = 24 * 60 * 60 * 1000
	maxSourcesLimit   = 1000
	maxItemsPerSource = 100
	maxConcurrency    = 50
)

// ProviderConfig holds the credentials for one LLM analysis provider. A
// provider with an empty APIKey is treated as not configured.
type ProviderConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// Configured reports whether the provider can be called at all.
func (p ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

// CrawlerConfig is the immutable process-lifetime configuration. It is
// constructed once at startup and read-only thereafter.
type CrawlerConfig struct {
	BaseURL        string
	IngestSecret   string
	SourcesLimit   int
	ItemsPerSource int
	Concurrency    int
	Loop           bool
	LoopInterval   time.Duration
	ReaderPrefix   string
	Anthropic      ProviderConfig
	Gemini         ProviderConfig
	DatabaseDSN    string
	LogLevel       string
}

// ConfigError reports every violated field at once so a misconfigured
// deployment surfaces all its problems in a single startup failure.
type ConfigError struct {
	Violations []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Violations, "; ")
}

// Load reads dotenv files and the optional YAML file named by CRAWLER_CONFIG,
// overlays real environment variables on top, and validates the result.
// Environment always wins over file values.
func Load() (CrawlerConfig, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	env := environMap()
	if path := env[configPathEnv]; path != "" {
		overlayFile(env, path)
	}

	return FromEnv(env)
}

// FromEnv builds a validated CrawlerConfig from an environment mapping. It is
// pure: no I/O beyond reading the input map.
func FromEnv(env map[string]string) (CrawlerConfig, error) {
	var violations []string

	cfg := CrawlerConfig{
		BaseURL:      strings.TrimRight(strings.TrimSpace(env[baseURLEnv]), "/"),
		IngestSecret: strings.TrimSpace(env[ingestSecretEnv]),
		ReaderPrefix: defaultReaderPrefix,
		LogLevel:     env[logLevelEnv],
		DatabaseDSN:  env[databaseDSNEnv],
	}

	if cfg.BaseURL == "" {
		violations = append(violations, baseURLEnv+" is required")
	} else if parsed, err := url.Parse(cfg.BaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		violations = append(violations, baseURLEnv+" must be a valid absolute URL")
	}

	if cfg.IngestSecret == "" {
		violations = append(violations, ingestSecretEnv+" is required")
	}

	cfg.SourcesLimit = intField(env, sourcesLimitEnv, defaultSourcesLimit, 1, maxSourcesLimit, &violations)
	cfg.ItemsPerSource = intField(env, itemsPerSourceEnv, defaultItemsPerSource, 1, maxItemsPerSource, &violations)
	cfg.Concurrency = intField(env, concurrencyEnv, defaultConcurrency, 1, maxConcurrency, &violations)

	intervalMS := intField(env, loopIntervalEnv, defaultLoopIntervalMS, minLoopIntervalMS, maxLoopIntervalMS, &violations)
	cfg.LoopInterval = time.Duration(intervalMS) * time.Millisecond

	cfg.Loop = strings.EqualFold(strings.TrimSpace(env[loopEnv]), "true")

	if v := strings.TrimSpace(env[readerPrefixEnv]); v != "" {
		cfg.ReaderPrefix = v
	}

	cfg.Anthropic = providerField(env, anthropicKeyEnv, anthropicModelEnv, defaultAnthropicModel)
	cfg.Gemini = providerField(env, geminiKeyEnv, geminiModelEnv, defaultGeminiModel)

	if len(violations) > 0 {
		return CrawlerConfig{}, &ConfigError{Violations: violations}
	}

	return cfg, nil
}

// intField parses an optional integer variable, falling back to def when the
// variable is absent and clamping out-of-range values into [min, max]. A
// value that does not parse at all is a violation, not a silent default.
func intField(env map[string]string, name string, def, min, max int, violations *[]string) int {
	raw := strings.TrimSpace(env[name])
	if raw == "" {
		return def
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		*violations = append(*violations, fmt.Sprintf("%s must be an integer, got %q", name, raw))
		return def
	}

	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func providerField(env map[string]string, keyEnv, modelEnv, defaultModel string) ProviderConfig {
	cfg := ProviderConfig{
		APIKey: strings.TrimSpace(env[keyEnv]),
		Model:  strings.TrimSpace(env[modelEnv]),
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return cfg
}

func environMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if idx := strings.IndexByte(kv, '='); idx > 0 {
			env[kv[:idx]] = kv[idx+1:]
		}
	}
	return env
}

// overlayFile merges YAML file values beneath the environment: a file value
// only lands where the corresponding variable is unset.
func overlayFile(env map[string]string, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var file struct {
		BaseURL        string         `yaml:"baseUrl"`
		IngestSecret   string         `yaml:"ingestSecret"`
		SourcesLimit   *int           `yaml:"sourcesLimit"`
		ItemsPerSource *int           `yaml:"itemsPerSource"`
		Concurrency    *int           `yaml:"concurrency"`
		Loop           *bool          `yaml:"loop"`
		LoopIntervalMS *int           `yaml:"loopIntervalMs"`
		ReaderPrefix   string         `yaml:"readerPrefix"`
		Anthropic      ProviderConfig `yaml:"anthropic"`
		Gemini         ProviderConfig `yaml:"gemini"`
		DatabaseDSN    string         `yaml:"databaseDsn"`
		LogLevel       string         `yaml:"logLevel"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return
	}

	setIfAbsent := func(name, value string) {
		if value != "" && env[name] == "" {
			env[name] = value
		}
	}

	setIfAbsent(baseURLEnv, file.BaseURL)
	setIfAbsent(ingestSecretEnv, file.IngestSecret)
	setIfAbsent(readerPrefixEnv, file.ReaderPrefix)
	setIfAbsent(anthropicKeyEnv, file.Anthropic.APIKey)
	setIfAbsent(anthropicModelEnv, file.Anthropic.Model)
	setIfAbsent(geminiKeyEnv, file.Gemini.APIKey)
	setIfAbsent(geminiModelEnv, file.Gemini.Model)
	setIfAbsent(databaseDSNEnv, file.DatabaseDSN)
	setIfAbsent(logLevelEnv, file.LogLevel)

	if file.SourcesLimit != nil {
		setIfAbsent(sourcesLimitEnv, strconv.Itoa(*file.SourcesLimit))
	}
	if file.ItemsPerSource != nil {
		setIfAbsent(itemsPerSourceEnv, strconv.Itoa(*file.ItemsPerSource))
	}
	if file.Concurrency != nil {
		setIfAbsent(concurrencyEnv, strconv.Itoa(*file.Concurrency))
	}
	if file.LoopIntervalMS != nil {
		setIfAbsent(loopIntervalEnv, strconv.Itoa(*file.LoopIntervalMS))
	}
	if file.Loop != nil {
		setIfAbsent(loopEnv, strconv.FormatBool(*file.Loop))
	}
}
