package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/post-engine/internal/drafts"
	"github.com/pdiddy/post-engine/internal/generate"
	"github.com/pdiddy/post-engine/internal/httputil"
	"github.com/pdiddy/post-engine/internal/publish"
	"github.com/pdiddy/post-engine/internal/retrieve"
	"github.com/pdiddy/post-engine/internal/server"
	"github.com/pdiddy/post-engine/pkg/types"
)

// Default configuration values. Every key is registered so AutomaticEnv can
// resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("generation.backend", string(types.BackendOpenAI))
	v.SetDefault("generation.model", "gpt-4o-mini")
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.base_url", "")
	v.SetDefault("generation.timeout", generate.DefaultTimeout)
	v.SetDefault("generation.temperature", 0.8)
	v.SetDefault("generation.top_p", 0.95)
	v.SetDefault("generation.example_count", retrieve.DefaultCount)
	v.SetDefault("generation.concurrency", generate.DefaultConcurrency)

	v.SetDefault("store.driver", string(types.DriverSQLite))
	v.SetDefault("store.dsn", drafts.DefaultSQLitePath)

	v.SetDefault("posting.endpoint", "")
	v.SetDefault("posting.api_key", "")
	v.SetDefault("posting.username", "")
	v.SetDefault("posting.timeout", publish.DefaultTimeout)
	v.SetDefault("posting.user_agent", publish.DefaultUserAgent+"/"+version)
	v.SetDefault("posting.max_retries", httputil.DefaultMaxRetries)
	v.SetDefault("posting.rate_per_second", publish.DefaultRatePerSecond)

	v.SetDefault("server.addr", server.DefaultAddr)
}

func loadConfig() (types.Config, error) {
	return loadConfigFrom(viper.GetViper())
}

func loadConfigFrom(v *viper.Viper) (types.Config, error) {
	var c types.Config
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if c.Generation.Timeout < 0 || c.Posting.Timeout < 0 {
		return types.Config{}, fmt.Errorf("timeouts must not be negative")
	}
	return c, nil
}

// newPipeline builds the generation pipeline from cfg.Generation.
func newPipeline(c types.GenerationConfig, log *zap.Logger) (*generate.Pipeline, error) {
	gen, err := generate.NewBackend(c)
	if err != nil {
		return nil, err
	}
	return generate.NewPipeline(gen,
		generate.WithExampleCount(c.ExampleCount),
		generate.WithTimeout(c.Timeout),
		generate.WithLogger(log),
	)
}

// newPublisher returns nil when no posting endpoint is configured.
func newPublisher(c types.PostingConfig, store *drafts.Store, log *zap.Logger) (*publish.Publisher, error) {
	if c.Endpoint == "" {
		return nil, nil
	}
	client, err := publish.NewClient(c, log)
	if err != nil {
		return nil, err
	}
	return publish.NewPublisher(store, client, log), nil
}

// commandTimeout bounds store-only commands.
const commandTimeout = 30 * time.Second
