package i18n_test

import (
	"testing"

	"github.com/jrsteele09/go-storefront/internal/i18n"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Run("exact", func(t *testing.T) {
		require.Equal(t, "ko-KR", i18n.Resolve("ko-KR"))
	})

	t.Run("empty falls back to base", func(t *testing.T) {
		require.Equal(t, i18n.BaseLocale, i18n.Resolve(""))
	})

	t.Run("garbage falls back to base", func(t *testing.T) {
		require.Equal(t, i18n.BaseLocale, i18n.Resolve("!!"))
	})
}

func TestText(t *testing.T) {
	require.Equal(t, "An error occurred", i18n.Text("en-US", i18n.MsgRemoteGeneric))
	require.Equal(t, "오류가 발생했습니다", i18n.Text("ko-KR", i18n.MsgRemoteGeneric))
	require.Equal(t, "Password must be at least 6 characters", i18n.Text("en-US", i18n.MsgPasswordTooShort, 6))
}
