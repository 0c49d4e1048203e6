// Package config defines the application configuration structure and loading.
// Configuration comes from environment variables (DAYPLAN_ prefix) layered over
// an optional config.yaml, and is validated before the server starts.
package config
