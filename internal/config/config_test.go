package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "http://localhost:8000/api/v1", c.GetAPIURL())
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
	require.Equal(t, int64(5242880), c.GetStorageQuota())
	require.Equal(t, "class-on.kr", c.GetRootDomain())
	require.Empty(t, c.GetAllowedOrigins())
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("STOREFRONT_API_URL", "https://api.example.com/api/v1/")
	t.Setenv("STOREFRONT_HTTP_TIMEOUT", "5s")
	t.Setenv("STOREFRONT_DATA_FOLDER", "/tmp/sf")
	t.Setenv("STOREFRONT_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	c, err := config.New()
	require.NoError(t, err)

	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, "https://api.example.com/api/v1", c.GetAPIURL())
	require.Equal(t, 5*time.Second, c.GetHTTPTimeout())
	require.Equal(t, "/tmp/sf/storefront.db", c.GetDatabasePath())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("https://b.example.com"))
	require.Equal(t, "https://a.example.com, https://b.example.com", c.GetAllowedOrigins().String())
}

func TestNew_InvalidDuration(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_TIMEOUT", "soon")

	_, err := config.New()
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse env:")
}
