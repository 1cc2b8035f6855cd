// Package api wires the gateway's routes. Handlers are thin: they read the
// effective user and request parameters, call a store, and hand the result
// or a classified error back to the router.
package api
