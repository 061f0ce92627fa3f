// Package config handles loading and validating http2sql configuration.
//
// This package manages:
//   - Loading configuration from YAML files and an optional .env file
//   - Overriding with HTTP2SQL_* environment variables
//   - Validation of required fields (all errors reported at once)
//   - Default value handling
//
// Security Considerations:
//   - Database and broker credentials should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Driver)
package config
