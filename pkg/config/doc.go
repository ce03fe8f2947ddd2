// Package config loads typed configuration from the environment.
//
// Every storefront component owns a Config struct annotated with `env` and
// `envDefault` tags (redirect paths, guard timeouts, session cookie settings,
// database and redis connections). Load parses such a struct once per type,
// after reading an optional .env file, and serves later calls from a cache so
// handlers can call it freely.
//
//	var paths redirect.Paths
//	if err := config.Load(&paths); err != nil {
//	    return err
//	}
package config
