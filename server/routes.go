package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHealthcheck, ChainMiddleware(s.HealthcheckHandler(), s.LoggingMiddleware, s.RecoverMiddleware))
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(s.PreflightHandler(), s.LoggingMiddleware, s.CorsMiddleware))

	s.RegisterRouteHandler("GET "+RouteStore, s.storefront(s.StoreInfoHandler()))
	s.RegisterRouteHandler("GET "+RouteStoreProducts, s.storefront(s.StoreProductsHandler()))
	s.RegisterRouteHandler("GET "+RouteStoreProduct, s.storefront(s.StoreProductHandler()))

	s.RegisterRouteHandler("GET "+RouteSession, s.storefront(s.SessionHandler()))
	s.RegisterRouteHandler("POST "+RouteSessionLogin, s.storefront(s.LoginHandler()))
	s.RegisterRouteHandler("POST "+RouteSessionLogout, s.storefront(s.LogoutHandler()))
	s.RegisterRouteHandler("POST "+RouteSessionSignup, s.storefront(s.SignupHandler()))

	s.RegisterRouteHandler("GET "+RouteCart, s.storefront(s.CartHandler()))
	s.RegisterRouteHandler("DELETE "+RouteCart, s.storefront(s.ClearCartHandler()))
	s.RegisterRouteHandler("POST "+RouteCartItems, s.storefront(s.AddCartItemHandler()))
	s.RegisterRouteHandler("DELETE "+RouteCartItem, s.storefront(s.RemoveCartItemHandler()))
	s.RegisterRouteHandler("GET "+RouteCartEvents, s.storefront(s.CartEventsHandler()))

	s.RegisterRouteHandler("GET "+RouteMyOrders, s.storefront(s.MyOrdersHandler()))

	s.RegisterRouteHandler("GET "+RouteReading, s.storefront(s.ReadingHandler()))
	s.RegisterRouteHandler("POST "+RouteReadingSelect, s.storefront(s.SelectSectionHandler()))
	s.RegisterRouteHandler("POST "+RouteReadingComplete, s.storefront(s.ToggleCompletionHandler()))
	s.RegisterRouteHandler("POST "+RouteReadingBookmark, s.storefront(s.ToggleBookmarkHandler()))
}

// storefront applies the middleware every tenant-scoped API route runs behind.
func (s *Server) storefront(handler http.HandlerFunc) http.HandlerFunc {
	return ChainMiddleware(handler, s.APIMiddleware()...)
}
