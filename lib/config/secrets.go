// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Secrets are the credentials read from the environment. Callers move
// them into lib/secret buffers as soon as possible.
type Secrets struct {
	AccessToken string `env:"TIMEZONER_ACCESS_TOKEN,required,notEmpty,unset"`

	// StorageKey is the hex-encoded record key. Exactly one of
	// StorageKey and StorageKeyFile must be set.
	StorageKey     string `env:"TIMEZONER_STORAGE_KEY,unset"`
	StorageKeyFile string `env:"TIMEZONER_STORAGE_KEY_FILE"`

	PostgresURL string `env:"TIMEZONER_POSTGRES_URL,unset"`
}

// LoadSecrets reads Secrets from the process environment. dotenvPath,
// if set, must name a .env file whose values are loaded first;
// otherwise ./.env is loaded when present. Variables already set in
// the environment win over .env values.
func LoadSecrets(dotenvPath string) (*Secrets, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", dotenvPath, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}
	return parseSecrets(env.Options{})
}

func parseSecrets(options env.Options) (*Secrets, error) {
	secrets := &Secrets{}
	if err := env.ParseWithOptions(secrets, options); err != nil {
		return nil, fmt.Errorf("config: reading secrets: %w", err)
	}
	return secrets, nil
}

// Validate checks the secrets against what cfg needs.
func (s *Secrets) Validate(cfg *Config) error {
	var errs []error
	switch {
	case s.StorageKey == "" && s.StorageKeyFile == "":
		errs = append(errs, &Error{Field: "TIMEZONER_STORAGE_KEY", Problem: "one of TIMEZONER_STORAGE_KEY or TIMEZONER_STORAGE_KEY_FILE is required"})
	case s.StorageKey != "" && s.StorageKeyFile != "":
		errs = append(errs, &Error{Field: "TIMEZONER_STORAGE_KEY", Problem: "set only one of TIMEZONER_STORAGE_KEY and TIMEZONER_STORAGE_KEY_FILE"})
	}
	if cfg.Store.Backend == BackendPostgres && s.PostgresURL == "" {
		errs = append(errs, &Error{Field: "TIMEZONER_POSTGRES_URL", Problem: "is required for the postgres backend"})
	}
	return errors.Join(errs...)
}
