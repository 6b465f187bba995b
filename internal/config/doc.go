// Package config handles application configuration loading and validation.
// Configuration is sourced from defaults, an optional YAML file, and
// TASKCHIME_-prefixed environment variables, in increasing precedence.
package config
