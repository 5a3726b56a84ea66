package tenants

import (
	"net"
	"strings"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/internal/i18n"
)

const (
	MinSubdomainLength = 3
	MaxSubdomainLength = 63
)

var reservedSubdomains = map[string]struct{}{
	"www":   {},
	"api":   {},
	"admin": {},
}

// ValidateSubdomain checks that s can name a store. The returned error is a
// *errors.ValidationError with a message in locale.
func ValidateSubdomain(s, locale string) error {
	if len(s) < MinSubdomainLength || len(s) > MaxSubdomainLength ||
		strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") || !subdomainChars(s) {
		return sferrors.NewValidationError("subdomain",
			i18n.Text(locale, i18n.MsgSubdomainInvalid, MinSubdomainLength, MaxSubdomainLength))
	}
	if _, reserved := reservedSubdomains[s]; reserved {
		return sferrors.NewValidationError("subdomain", i18n.Text(locale, i18n.MsgSubdomainReserved, s))
	}
	return nil
}

func subdomainChars(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return true
}

// FromHost extracts the tenant from a request host. The bare root domain,
// its www host and the api host carry no tenant. Hosts outside rootDomain
// follow the label count rule: two labels, or three starting with www, are
// a main domain.
func FromHost(host, rootDomain string) (string, bool) {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	rootDomain = strings.ToLower(strings.Trim(rootDomain, ". "))

	if host == "" || net.ParseIP(host) != nil {
		return "", false
	}

	if rootDomain != "" {
		if host == rootDomain || host == "www."+rootDomain {
			return "", false
		}
		if sub, ok := strings.CutSuffix(host, "."+rootDomain); ok {
			return tenantLabel(sub)
		}
	}

	parts := strings.Split(host, ".")
	switch {
	case len(parts) <= 2 && parts[len(parts)-1] != "localhost":
		return "", false
	case len(parts) == 1:
		return "", false
	case len(parts) == 3 && parts[0] == "www":
		return "", false
	}
	return tenantLabel(parts[0])
}

func tenantLabel(sub string) (string, bool) {
	label, _, _ := strings.Cut(sub, ".")
	if label == "" || label == "www" || label == "api" {
		return "", false
	}
	return label, true
}
