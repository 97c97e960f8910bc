// Package config loads environment-based configuration structs via
// github.com/caarlos0/env with optional .env bootstrap through
// github.com/joho/godotenv.
//
// Every component of the toolkit declares its own Config struct with
// `env` tags (see pkg/pg, pkg/redis, svc/gateway) and loads it with
// config.Load or config.MustLoad. Parsed configurations are cached per
// type, so repeated loads are cheap and consistent.
package config
