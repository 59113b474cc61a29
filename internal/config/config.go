package config

import (
	"errors"
	"net/url"
	"strings"

	"log/slog"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type Config struct{ v *viper.Viper }

func New() *Config {
	vv := viper.New()
	vv.AutomaticEnv()
	return &Config{v: vv}
}

// GetDsn resolves the final DSN using env vars
func (c *Config) GetDsn() (*url.URL, error) {
	source := c.v.GetString("DSN")
	if source == "" {
		user := c.v.GetString("PGUSER")
		if user == "" {
			user = "postgres"
		}
		dbName := c.v.GetString("PGDATABASE")
		if dbName == "" {
			dbName = "postgres"
		}
		host := c.v.GetString("PGHOST")
		if host == "" {
			host = "localhost"
		}
		port := c.v.GetString("PGPORT")
		if port == "" {
			port = "5432"
		}
		source = "postgres://" + user + "@" + host + ":" + port + "/" + dbName + "?sslmode=disable"
	}

	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" {
		return nil, errors.New("invalid DSN: must be in format driver://dataSourceName")
	}
	return u, nil
}

func (c *Config) GetGitHubToken() string {
	if t := c.v.GetString("GITHUB_TOKEN"); t != "" {
		return t
	}
	return c.v.GetString("GH_TOKEN")
}

// GetGitHubRepo returns the tracked repository in "owner/name" form.
func (c *Config) GetGitHubRepo() string {
	if r := c.v.GetString("GITHUB_REPO"); r != "" {
		return r
	}
	return "elastic/kibana"
}

// GetPageSize returns the issue page size from env var PAGE_SIZE; defaults to 100.
func (c *Config) GetPageSize() int {
	if n := c.v.GetInt("PAGE_SIZE"); n > 0 {
		return n
	}
	return 100
}

// GetMaxPages bounds pagination against an unbounded upstream.
// Reads env var MAX_PAGES; defaults to 99.
func (c *Config) GetMaxPages() int {
	if n := c.v.GetInt("MAX_PAGES"); n > 0 {
		return n
	}
	return 99
}

// GetLLMProvider returns the summarization backend from env var LLM_PROVIDER.
// Recognized values: huggingface (default), openai.
func (c *Config) GetLLMProvider() string {
	if p := strings.ToLower(c.v.GetString("LLM_PROVIDER")); p != "" {
		return p
	}
	return "huggingface"
}

// GetLLMAPIKey returns the inference API key from env var LLM_API_KEY.
func (c *Config) GetLLMAPIKey() string { return c.v.GetString("LLM_API_KEY") }

// GetLLMModel returns the summarization model from env var LLM_MODEL.
func (c *Config) GetLLMModel() string {
	if m := c.v.GetString("LLM_MODEL"); m != "" {
		return m
	}
	return "microsoft/deberta-v3-large"
}

// GetLLMBaseURL returns the inference endpoint base URL from env var LLM_BASE_URL.
func (c *Config) GetLLMBaseURL() string {
	if u := c.v.GetString("LLM_BASE_URL"); u != "" {
		return u
	}
	return "https://api-inference.huggingface.co"
}

// GetOpenAIAPIKey returns the OpenAI API key from env var OPENAI_API_KEY.
func (c *Config) GetOpenAIAPIKey() string { return c.v.GetString("OPENAI_API_KEY") }

// GetAnalysisConcurrency returns the bound on in-flight analysis calls.
// Reads env var ANALYSIS_CONCURRENCY; defaults to 1 (sequential).
func (c *Config) GetAnalysisConcurrency() int {
	if n := c.v.GetInt("ANALYSIS_CONCURRENCY"); n > 0 {
		return n
	}
	return 1
}

// GetReportPath returns the report artifact path from env var REPORT_PATH.
func (c *Config) GetReportPath() string {
	if p := c.v.GetString("REPORT_PATH"); p != "" {
		return p
	}
	return "repository_report.txt"
}

func (c *Config) GetAddr() string {
	port := c.v.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	host := c.v.GetString("HOST")
	if host == "" {
		host = "localhost"
	}
	return host + ":" + port
}

func (c *Config) GetServiceName() string {
	if n := c.v.GetString("SERVICE_NAME"); n != "" {
		return n
	}
	return "issueranker"
}

func (c *Config) Set(key string, value any) { c.v.Set(key, value) }

// GetLogLevel returns the log level from env var LOG_LEVEL mapped to slog.Level.
// Recognized values: debug, info (default), warn|warning, error.
func (c *Config) GetLogLevel() slog.Level {
	switch strings.ToLower(c.v.GetString("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OnLogLevelChange calls fn with the slog.Level whenever it changes.
// The initial call is made immediately.
func (c *Config) OnLogLevelChange(fn func(slog.Level)) {
	apply := func() { fn(c.GetLogLevel()) }
	apply()
	c.v.OnConfigChange(func(e fsnotify.Event) { apply() })
}
