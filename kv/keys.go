package kv

// Persisted keys. These names match what the web storefront keeps in
// browser local storage so a profile can be inspected the same way.
const (
	KeyCustomerToken     = "customer_token"
	KeyCustomerSubdomain = "customer_subdomain"
	KeyAccessToken       = "access_token"
	KeyUserEmail         = "user_email"

	cartKeyPrefix = "cart_"
)

// CartKey is the key holding tenant's cart.
func CartKey(tenant string) string {
	return cartKeyPrefix + tenant
}

// CartKeyPrefix is shared by all cart keys.
func CartKeyPrefix() string {
	return cartKeyPrefix
}
