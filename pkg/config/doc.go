// Package config loads application configuration from environment
// variables.
//
// All variables are prefixed PULSE_ and every one has a sensible
// default, so a bare process comes up against a local store. LoadConfig
// validates the assembled configuration before returning it.
package config
