package config_test

import (
	"testing"
	"time"

	"github.com/myrjola/murderai/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		environ []string
		want    func(t *testing.T, cfg config.Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			environ: nil,
			want: func(t *testing.T, cfg config.Config) {
				require.Equal(t, "localhost:4000", cfg.Addr)
				require.Equal(t, "./murderai.sqlite", cfg.SQLiteURL)
				require.Equal(t, 2*time.Hour, cfg.SessionIdleTimeout)
				require.Equal(t, 5*time.Minute, cfg.JanitorInterval)
				require.True(t, cfg.SecureCookies)
				require.False(t, cfg.StrictBudget)
				require.True(t, cfg.OpenAI.Offline())
				require.Equal(t, "gpt-3.5-turbo-1106", cfg.OpenAI.Model)
			},
		},
		{
			name: "overrides",
			environ: []string{
				"MURDERAI_ADDR=localhost:0",
				"MURDERAI_SQLITE_URL=:memory:",
				"MURDERAI_SESSION_IDLE_TIMEOUT=30m",
				"MURDERAI_SECURE_COOKIES=false",
				"MURDERAI_STRICT_BUDGET=true",
				"OPENAI_API_KEY=sk-test",
				"OPENAI_BASE_URL=http://localhost:9999/v1",
			},
			want: func(t *testing.T, cfg config.Config) {
				require.Equal(t, "localhost:0", cfg.Addr)
				require.Equal(t, ":memory:", cfg.SQLiteURL)
				require.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
				require.False(t, cfg.SecureCookies)
				require.True(t, cfg.StrictBudget)
				require.False(t, cfg.OpenAI.Offline())
				require.Equal(t, "http://localhost:9999/v1", cfg.OpenAI.BaseURL)
			},
		},
		{
			name:    "malformed duration",
			environ: []string{"MURDERAI_JANITOR_INTERVAL=soon"},
			wantErr: true,
		},
		{
			name:    "non-positive timeout",
			environ: []string{"MURDERAI_SESSION_IDLE_TIMEOUT=0s"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(tt.environ)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.want(t, cfg)
		})
	}
}
