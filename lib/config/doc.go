// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads timezoner's configuration.
//
// Settings come from one YAML file, named by the --config flag or the
// TIMEZONER_CONFIG environment variable ([Load], [LoadFile]). There is
// no discovery and no per-setting environment override. The file may
// carry development and production sections that override base values
// when [Config].Environment matches. String fields holding paths or
// URLs expand ${VAR} and ${VAR:-default} after loading.
//
// Secrets never live in the file. [LoadSecrets] reads them from the
// environment, optionally seeded from a .env file for local
// development, and unsets the variables it consumed.
//
// Every problem found by Validate is an [*Error].
package config
