// Package server provides HTTP routing, middleware, and the Spotify login handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] registered first is outermost and sees the request first.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Login Flow
//
// [AuthHandler] serves two routes:
//
//	GET /login    → 302 to the Spotify authorization page
//	GET /callback → code exchange, profile fetch, user upsert, 302 to the front end
//
// The callback redirects to the configured front-end URL with access_token and user_id query parameters.
// Provider failures answer 400 and store failures answer 500, each with a generic JSON body of the form
// {"detail": "..."}. The underlying cause is only logged.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, returning the [Route] values they serve so a handler can
// encapsulate several endpoints.
//
// # Lifecycle
//
// [Server] wraps [http.Server] and shuts down gracefully when its context is cancelled.
package server
