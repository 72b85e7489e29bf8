// Package middleware provides HTTP middleware for the API server.
//
// # Rate Limiting
//
// The rate limiter counts requests per client in the shared store with
// a fixed window, so limits hold across API instances. It fails open on
// store errors.
//
//	cfg, _ := middleware.LoadRateLimitConfig("ratelimit.yaml")
//	limiter := middleware.NewRateLimiter(client.Redis(), cfg, "ratelimit")
//	router.Use(limiter.Handler)
package middleware
