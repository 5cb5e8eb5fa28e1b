// Package config handles loading and validating Tartan Home Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling, including per-house defaults
//
// Security Considerations:
//   - Passwords are stored only as Argon2id hashes (houses[].password_hash)
//   - Sensitive values (tokens, secrets) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, h := range cfg.Houses {
//	    fmt.Println(h.Name)
//	}
package config
