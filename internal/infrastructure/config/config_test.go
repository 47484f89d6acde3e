package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "lookbook", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", cfg.App.DefaultShopID)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "lookbook", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())

	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, int64(10<<20), cfg.HTTP.MaxImportSize)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
	assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "X-Tenant-ID")

	assert.Equal(t, LLMProviderTemplate, cfg.LLM.Provider)
	assert.Equal(t, 3*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, uint32(5), cfg.LLM.BreakerMaxFailures)

	rec := cfg.Recommendation
	assert.Equal(t, 3, rec.DefaultMaxOutfits)
	assert.Equal(t, 10, rec.MaxOutfitsLimit)
	assert.Equal(t, 500, rec.CandidateLimit)
	assert.Equal(t, 5*time.Minute, rec.CacheTTL)
	assert.Equal(t, 3*time.Second, rec.RationaleTimeout)
	assert.Equal(t, 0.5, rec.MaxPriceDeviation)
	assert.Equal(t, "casual", rec.DefaultIntent)

	assert.Equal(t, 15*time.Minute, cfg.Storage.UploadURLExpiry)
	assert.Equal(t, time.Hour, cfg.Storage.DownloadURLExpiry)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.Equal(t, 200*time.Millisecond, cfg.Telemetry.DBSlowQueryThresh)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	env := map[string]string{
		"LOOKBOOK_APP_NAME":                         "test-app",
		"LOOKBOOK_APP_PORT":                         "9000",
		"LOOKBOOK_DATABASE_HOST":                    "testdb.local",
		"LOOKBOOK_DATABASE_PORT":                    "5433",
		"LOOKBOOK_DATABASE_PASSWORD":                "testpass",
		"LOOKBOOK_DATABASE_MAX_OPEN_CONNS":          "50",
		"LOOKBOOK_DATABASE_MAX_IDLE_CONNS":          "10",
		"LOOKBOOK_REDIS_ENABLED":                    "true",
		"LOOKBOOK_LLM_PROVIDER":                     "ark",
		"LOOKBOOK_LLM_MODEL":                        "stylist-model",
		"LOOKBOOK_LLM_API_KEY":                      "secret",
		"LOOKBOOK_LLM_TIMEOUT":                      "2s",
		"LOOKBOOK_RECOMMENDATION_MAX_OUTFITS_LIMIT": "6",
		"LOOKBOOK_RECOMMENDATION_CACHE_TTL":         "30s",
		"LOOKBOOK_HTTP_CORS_ALLOW_ORIGINS":          "https://shop.example,https://admin.example",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-app", cfg.App.Name)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "testdb.local", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "testpass", cfg.Database.Password)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, LLMProviderArk, cfg.LLM.Provider)
	assert.Equal(t, "stylist-model", cfg.LLM.Model)
	assert.Equal(t, 2*time.Second, cfg.Recommendation.RationaleTimeout, "rationale timeout follows the llm timeout")
	assert.Equal(t, 6, cfg.Recommendation.MaxOutfitsLimit)
	assert.Equal(t, 30*time.Second, cfg.Recommendation.CacheTTL)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.HTTP.CORSAllowOrigins)
}

func TestLoad_Rejects(t *testing.T) {
	production := map[string]string{
		"LOOKBOOK_APP_ENV":           "production",
		"LOOKBOOK_DATABASE_PASSWORD": "secure-password",
		"LOOKBOOK_DATABASE_SSLMODE":  "require",
	}
	with := func(base, extra map[string]string) map[string]string {
		out := make(map[string]string, len(base)+len(extra))
		for k, v := range base {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"idle above open", map[string]string{"LOOKBOOK_DATABASE_MAX_OPEN_CONNS": "10", "LOOKBOOK_DATABASE_MAX_IDLE_CONNS": "20"}, "cannot exceed"},
		{"negative idle", map[string]string{"LOOKBOOK_DATABASE_MAX_IDLE_CONNS": "-1"}, "max_idle_conns cannot be negative"},
		{"default outfits above limit", map[string]string{"LOOKBOOK_RECOMMENDATION_DEFAULT_MAX_OUTFITS": "8", "LOOKBOOK_RECOMMENDATION_MAX_OUTFITS_LIMIT": "4"}, "default_max_outfits"},
		{"price deviation", map[string]string{"LOOKBOOK_RECOMMENDATION_MAX_PRICE_DEVIATION": "1.5"}, "max_price_deviation"},
		{"unknown llm provider", map[string]string{"LOOKBOOK_LLM_PROVIDER": "oracle"}, "llm.provider"},
		{"ark without model", map[string]string{"LOOKBOOK_LLM_PROVIDER": "ark", "LOOKBOOK_LLM_API_KEY": "secret"}, "llm.model is required"},
		{"storage without bucket", map[string]string{"LOOKBOOK_STORAGE_ENABLED": "true"}, "storage.bucket"},
		{"sampling ratio", map[string]string{"LOOKBOOK_TELEMETRY_SAMPLING_RATIO": "1.5"}, "sampling_ratio"},
		{"production without password", with(production, map[string]string{"LOOKBOOK_DATABASE_PASSWORD": ""}), "database.password is required in production"},
		{"production without tls", with(production, map[string]string{"LOOKBOOK_DATABASE_SSLMODE": "disable"}), "database.sslmode cannot be 'disable' in production"},
		{"production full sql", with(production, map[string]string{"LOOKBOOK_TELEMETRY_DB_LOG_FULL_SQL": "true"}), "db_log_full_sql"},
		{"production wildcard origin", with(production, map[string]string{"LOOKBOOK_HTTP_CORS_ALLOW_ORIGINS": "*"}), "cors_allow_origins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("production settings that pass", func(t *testing.T) {
		for k, v := range production {
			t.Setenv(k, v)
		}
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("every problem is reported", func(t *testing.T) {
		t.Setenv("LOOKBOOK_LLM_PROVIDER", "oracle")
		t.Setenv("LOOKBOOK_TELEMETRY_SAMPLING_RATIO", "2")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "llm.provider")
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, User: "shop", Password: "pass@word#123", DBName: "lookbook", SSLMode: "disable"}
	assert.Equal(t, "postgres://shop:pass%40word%23123@db:5432/lookbook?sslmode=disable", cfg.DSN())
}
