// Package config loads application configuration from environment variables
// into typed structs.
//
// Configuration structs declare their variables with `env` tags:
//
//	type WorkerConfig struct {
//		Storage      string `env:"QUEUE_STORAGE" envDefault:"memory"`
//		PullInterval time.Duration `env:"QUEUE_PULL_INTERVAL" envDefault:"1s"`
//	}
//
//	cfg, err := config.Load[WorkerConfig]()
//
// A .env file in the working directory is loaded once, if present, before the
// first parse. Values already set in the process environment take precedence.
package config
