package staging

// Config holds configuration for the staging store.
type Config struct {
	// Dir is the directory in which staging databases are created.
	// An empty value uses a temporary directory removed when the store is closed.
	Dir string `mapstructure:"dir" default:""`
}
