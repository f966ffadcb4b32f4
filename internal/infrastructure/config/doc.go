// Package config loads storefetch configuration from environment variables.
//
// Values come from envconfig struct tags with defaults; LoadFiles can seed
// the environment from .env files first. Resolver form defaults (lookup
// type, ring, language) are opaque strings and are forwarded as given.
//
// Example:
//
//	cfg, err := config.LoadFiles(".env")
//	if err != nil {
//		return err
//	}
//	fmt.Println(cfg.Resolver.Endpoint)
package config
