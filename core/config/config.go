package config

import (
	"path/filepath"
	"reflect"
	"strings"

	"lair-scanner/core/api"
	"lair-scanner/core/logger"
	"lair-scanner/core/reconcile"
	"lair-scanner/core/staging"
	"lair-scanner/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the scanner.
const EnvPrefix = "LAIR_SCANNER"

// Config holds all configuration for the scanner.
// It is divided into partial configurations, each owned by the package using it.
type Config struct {
	// API holds the Lair server connection settings.
	API api.Config `mapstructure:"api"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Scan holds the reconciliation tunables.
	Scan reconcile.Config `mapstructure:"scan"`
	// Staging holds the location of the staging database.
	Staging staging.Config `mapstructure:"staging"`
	// Storage holds configuration for the scan report archive.
	Storage storage.Config `mapstructure:"storage"`
}

// LoadConfig loads configuration from environment variables and the .env file in dir.
func LoadConfig(dir string) (*Config, error) {
	// Ignore error if the file doesn't exist
	_ = godotenv.Overload(filepath.Join(dir, ".env"))

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. LAIR_SCANNER_API_URL -> api.url)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues registers a default for every field tagged with mapstructure,
// using its 'default' tag.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set a default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue(field))
	}
}

// defaultValue returns the default tag, split on commas for slice fields.
func defaultValue(field reflect.StructField) any {
	raw := field.Tag.Get("default")
	if field.Type.Kind() != reflect.Slice {
		return raw
	}
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, ",")
}
