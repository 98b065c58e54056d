// Package server provides HTTP routing, middleware, and lifecycle handling for the event endpoint.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
// The websocket event hub (events.Hub) is registered this way at /events.
//
// # Lifecycle
//
// [Serve] runs an [http.Server] until its context is cancelled, then shuts it down gracefully.
package server
