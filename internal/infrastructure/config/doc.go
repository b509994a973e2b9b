// Package config handles loading and validating Agro Sirius Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Reading an optional .env file for local development
//   - Overriding with AGROSIRIUS_* environment variables
//   - Validation of required fields
//
// Broker passwords and InfluxDB tokens belong in environment variables,
// not in the YAML file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Farm.Name)
package config
