package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// Load parses environment variables into a new configuration struct of type T
// based on `env` field tags. On first use it attempts to load a .env file from
// the working directory; a missing file is not an error.
func Load[T any]() (T, error) {
	var cfg T

	defaultEnvLoaded.Do(func() {
		_ = godotenv.Load()
	})

	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}

	return cfg, nil
}

// LoadFromFiles behaves like Load but sources variables from the given env
// files first. Unlike the default .env probe, a missing file here is an error.
func LoadFromFiles[T any](filenames ...string) (T, error) {
	var cfg T

	for _, name := range filenames {
		if _, err := os.Stat(name); err != nil {
			return cfg, fmt.Errorf("%w: %s", ErrLoadingEnvFile, name)
		}
	}
	if err := godotenv.Load(filenames...); err != nil {
		return cfg, errors.Join(ErrLoadingEnvFile, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}

	return cfg, nil
}

// MustLoad is like Load but panics on failure. Intended for use in main
// during process startup.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(err)
	}
	return cfg
}
