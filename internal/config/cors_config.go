package config

import (
	"sort"
	"strings"
)

type Cors struct {
	rootDomain string
	origins    AllowedOrigins
}

var _ GatewayConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	sort.Strings(origins)
	return strings.Join(origins, ", ")
}

func newCors(s settings) Cors {
	origins := AllowedOrigins{}
	for _, origin := range s.Origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins[origin] = nullValue{}
		}
	}
	return Cors{rootDomain: strings.ToLower(strings.TrimSpace(s.RootDomain)), origins: origins}
}

func (c Cors) GetRootDomain() string {
	return c.rootDomain
}

func (c Cors) GetAllowedOrigins() AllowedOrigins {
	return c.origins
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, PUT, PATCH, DELETE"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization, X-Storefront-Tenant"
}
