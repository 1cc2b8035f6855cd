// Package domain contains the entities the gateway exchanges with the LMS:
// API clients and their route permissions, calendars and repository objects.
// It has no knowledge of HTTP or storage.
package domain
