// Package postgres implements the store interfaces on top of database/sql
// with the pgx driver. It owns the gateway's schema migrations and reads the
// LMS tables (users, roles, calendars, objects) it shares a database with.
package postgres
