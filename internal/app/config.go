package app

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (CATALOG_ prefix), flags, or YAML config files.
type Config struct {
	CatalogFiles []string `usage:"Catalog files (.json or .json.gz); the bundled catalog is used when empty" flag:"catalog-files"`
	Merge        bool     `default:"false" usage:"Merge products with the same name within a category"`
	DatabaseURL  string   `usage:"PostgreSQL URL to export the catalog to (CATALOG_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Reprice      []string `usage:"Price changes as name=price; lowering a price asks for confirmation on stdin"`
	Orders       []string `usage:"Orders to check against stock as name=quantity"`
	Export       ExportConfig
}

// ExportConfig controls how the catalog is written to PostgreSQL.
type ExportConfig struct {
	Replace bool `default:"true" usage:"Replace the previously exported catalog" flag:"export-replace"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "CATALOG",
		Files:     []string{"config.yaml", "/etc/catalog/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	return &cfg, nil
}

// applyPlatformDefaults maps the conventional DATABASE_URL variable to the
// export database when no CATALOG_-prefixed value is set.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
}
