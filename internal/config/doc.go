// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional YAML file. It provides type-safe
// access to the gateway's settings while keeping configuration details
// separate from routing and authorization logic.
package config
