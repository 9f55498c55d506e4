// Package config provides configuration management for the Lair scanner.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Every key can be overridden with an environment
// variable prefixed with LAIR_SCANNER, e.g. LAIR_SCANNER_API_TOKEN.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - API: server URL, token and scanner identity
//   - Log: logging level, format and optional file
//   - Scan: depth limit, page and batch sizes, global ignores
//   - Staging: location of the staging database
//   - Storage: S3/MinIO scan report archive
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.URL)
package config
