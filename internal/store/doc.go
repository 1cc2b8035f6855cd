// Package store defines the persistence interfaces the gateway depends on:
// route permissions, API clients, and the read-only LMS collaborators
// (users, calendars, repository objects). Implementations live in
// internal/platform/postgres.
package store
