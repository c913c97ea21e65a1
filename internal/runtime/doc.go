// Package runtime assembles the correlation propagation pieces into a
// runnable hop: transport construction via the registry, a watermill
// router carrying the default middleware chain, handler registration,
// correlated publishing, and the HTTP invocation boundary.
package runtime
