// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels, an append-only file sink, and a CRITICAL level used for
// failures caught at the top of the request pipeline.
package logger
