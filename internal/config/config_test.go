package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	require.NotNil(t, cfg)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, ImageStoreLocal, cfg.Uploads.Store)
	assert.Equal(t, "./uploads/toys", cfg.Uploads.Dir)
	assert.Equal(t, "/uploads/toys", cfg.Uploads.PublicPath)
	assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxFileSize)
	assert.Equal(t, 5, cfg.Uploads.MaxFiles)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("UPLOADS_PATH", "/static/toys/")
	t.Setenv("MAX_FILE_SIZE", "1048576")
	t.Setenv("MAX_FILES", "2")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_ENABLED", "true")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "/static/toys", cfg.Uploads.PublicPath)
	assert.Equal(t, int64(1048576), cfg.Uploads.MaxFileSize)
	assert.Equal(t, 2, cfg.Uploads.MaxFiles)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_NonPositiveLimitsFallBack(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE", "0")
	t.Setenv("MAX_FILES", "-3")

	cfg := Load()

	assert.Equal(t, int64(5*1024*1024), cfg.Uploads.MaxFileSize)
	assert.Equal(t, 5, cfg.Uploads.MaxFiles)
}

func TestImagePublicPath(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "local store serves uploads path",
			env:  map[string]string{},
			want: "/uploads/toys",
		},
		{
			name: "s3 derives bucket url",
			env:  map[string]string{"IMAGE_STORE": "s3", "S3_ENDPOINT": "minio:9000"},
			want: "http://minio:9000/toys",
		},
		{
			name: "s3 over tls",
			env:  map[string]string{"IMAGE_STORE": "S3", "S3_ENDPOINT": "s3.example.com", "S3_BUCKET": "catalog", "S3_USE_SSL": "true"},
			want: "https://s3.example.com/catalog",
		},
		{
			name: "s3 keeps absolute uploads path",
			env:  map[string]string{"IMAGE_STORE": "s3", "S3_ENDPOINT": "minio:9000", "UPLOADS_PATH": "https://cdn.example.com/toys/"},
			want: "https://cdn.example.com/toys",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tt.want, Load().ImagePublicPath())
		})
	}
}
