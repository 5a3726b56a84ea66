package server

// Route path constants
const (
	RouteHealthcheck = "/healthcheck"

	// Store
	RouteStore         = "/api/store"
	RouteStoreProducts = "/api/store/products"
	RouteStoreProduct  = "/api/store/products/{id}"

	// Customer session
	RouteSession       = "/api/session"
	RouteSessionLogin  = "/api/session/login"
	RouteSessionLogout = "/api/session/logout"
	RouteSessionSignup = "/api/session/signup"

	// Cart
	RouteCart       = "/api/cart"
	RouteCartItems  = "/api/cart/items"
	RouteCartItem   = "/api/cart/items/{id}"
	RouteCartEvents = "/api/cart/events"

	// Orders
	RouteMyOrders = "/api/orders"

	// Reading
	RouteReading         = "/api/reading/{productID}"
	RouteReadingSelect   = "/api/reading/{productID}/sections/{sectionID}/select"
	RouteReadingComplete = "/api/reading/{productID}/sections/{sectionID}/complete"
	RouteReadingBookmark = "/api/reading/{productID}/sections/{sectionID}/bookmark"
)

// Request headers and cookies
const (
	HeaderTenant  = "X-Storefront-Tenant"
	ProfileCookie = "sf_profile"
)
