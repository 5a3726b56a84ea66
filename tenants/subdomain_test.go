package tenants_test

import (
	"testing"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/tenants"
	"github.com/stretchr/testify/require"
)

func TestValidateSubdomain(t *testing.T) {
	valid := []string{"acme", "my-store", "abc", "store123"}
	for _, s := range valid {
		t.Run("valid "+s, func(t *testing.T) {
			require.NoError(t, tenants.ValidateSubdomain(s, "en-US"))
		})
	}

	invalid := []string{"", "ab", "-acme", "acme-", "Acme", "my_store", "shop.acme", "www", "api", "admin"}
	for _, s := range invalid {
		t.Run("invalid "+s, func(t *testing.T) {
			err := tenants.ValidateSubdomain(s, "en-US")
			require.Error(t, err)
			require.True(t, sferrors.IsValidation(err))
		})
	}

	t.Run("reserved message names the subdomain", func(t *testing.T) {
		err := tenants.ValidateSubdomain("admin", "en-US")
		require.Contains(t, err.Error(), `"admin"`)
	})
}

func TestFromHost(t *testing.T) {
	const root = "class-on.kr"

	tests := []struct {
		host   string
		tenant string
		ok     bool
	}{
		{host: "acme.class-on.kr", tenant: "acme", ok: true},
		{host: "ACME.class-on.kr:443", tenant: "acme", ok: true},
		{host: "class-on.kr", ok: false},
		{host: "www.class-on.kr", ok: false},
		{host: "api.class-on.kr", ok: false},
		{host: "acme.localhost:3000", tenant: "acme", ok: true},
		{host: "localhost:8080", ok: false},
		{host: "127.0.0.1:8080", ok: false},
		{host: "example.com", ok: false},
		{host: "www.example.com", ok: false},
		{host: "shop.example.com", tenant: "shop", ok: true},
		{host: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			tenant, ok := tenants.FromHost(tt.host, root)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.tenant, tenant)
		})
	}
}
