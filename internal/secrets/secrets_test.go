// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/post-engine/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, OpenAIKey, "  sk_abc123  \n")
				writeFile(t, dir, AnthropicKey, "ak_xyz789")
				writeFile(t, dir, PostingKey, "post_456\n")
				return dir
			},
			want: map[string]string{
				OpenAIKey:    "sk_abc123",
				AnthropicKey: "ak_xyz789",
				PostingKey:   "post_456",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, PostingKey, "post_real")
				return dir
			},
			want: map[string]string{
				PostingKey: "post_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "anthropic-api-key", "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"anthropic-api-key": "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir, nil)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}

	core, logs := observer.New(zap.WarnLevel)
	got, err := Load(dir, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
	assert.Equal(t, 1, logs.FilterMessage("could not read secret").Len())
}

func TestApply(t *testing.T) {
	loaded := map[string]string{
		OpenAIKey:    "sk_file",
		AnthropicKey: "ak_file",
		PostingKey:   "post_file",
	}

	tests := []struct {
		name        string
		cfg         types.Config
		wantGenKey  string
		wantPostKey string
	}{
		{
			name:        "openai backend uses openai key",
			wantGenKey:  "sk_file",
			wantPostKey: "post_file",
		},
		{
			name:        "claude backend uses anthropic key",
			cfg:         types.Config{Generation: types.GenerationConfig{Backend: types.BackendClaude}},
			wantGenKey:  "ak_file",
			wantPostKey: "post_file",
		},
		{
			name: "configured keys win",
			cfg: types.Config{
				Generation: types.GenerationConfig{AIConfig: types.AIConfig{APIKey: "sk_env"}},
				Posting:    types.PostingConfig{APIKey: "post_env"},
			},
			wantGenKey:  "sk_env",
			wantPostKey: "post_env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			Apply(&cfg, loaded)
			assert.Equal(t, tt.wantGenKey, cfg.Generation.APIKey)
			assert.Equal(t, tt.wantPostKey, cfg.Posting.APIKey)
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
