package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "post-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// GeneratorBackend identifies the text-generation service.
type GeneratorBackend string

const (
	BackendOpenAI GeneratorBackend = "openai"
	BackendClaude GeneratorBackend = "claude"
)

// AIConfig holds shared settings for calling a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the API endpoint for OpenAI-compatible gateways.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// GenerationConfig holds settings for the content pipeline.
type GenerationConfig struct {
	AIConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects the generator: openai or claude.
	Backend GeneratorBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Timeout bounds a single generation call (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Temperature and TopP are sampling parameters passed to the backend.
	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	TopP        float64 `json:"top_p" yaml:"top_p" mapstructure:"top_p"`

	// ExampleCount is how many corpus examples go into the prompt (default 3).
	ExampleCount int `json:"example_count" yaml:"example_count" mapstructure:"example_count"`

	// Concurrency caps in-flight generations for batch runs (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
}

// StoreDriver names a database/sql driver supported by the draft store.
type StoreDriver string

const (
	DriverSQLite   StoreDriver = "sqlite3"
	DriverPostgres StoreDriver = "postgres"
)

// StoreConfig holds settings for the draft store.
type StoreConfig struct {
	// Driver is sqlite3 (default) or postgres.
	Driver StoreDriver `json:"driver" yaml:"driver" mapstructure:"driver"`

	// DSN is the data source name. For sqlite3 it is a file path
	// (default "data/posts.db").
	DSN string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`
}

// PostingConfig holds settings for the remote posting endpoint.
type PostingConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the URL that accepts new posts.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// APIKey is sent in the api-key header.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Username is the account the post is published under.
	Username string `json:"username" yaml:"username" mapstructure:"username"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RatePerSecond throttles outbound posts (default 1).
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// Config groups all component configurations.
type Config struct {
	Generation GenerationConfig `json:"generation" yaml:"generation" mapstructure:"generation"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Posting    PostingConfig    `json:"posting" yaml:"posting" mapstructure:"posting"`
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
}
