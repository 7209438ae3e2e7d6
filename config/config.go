// Package config holds the shared settings of the picakit tools, loadable
// from a YAML file with sensible defaults. Flags override file values.
package config

import (
	"fmt"
	"os"
	"path"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config for conversion runs.
type Config struct {
	// MapperPath is the identifier to object id mapping file.
	MapperPath string `yaml:"mapper"`
	// OutputDir receives one XML document per generated object id.
	OutputDir string `yaml:"output"`
	// IDTemplate seeds the id generator, e.g. "artus_mods_00000000".
	IDTemplate string `yaml:"id-template"`
	// Status is the service state of newly created objects.
	Status string `yaml:"status"`
	// TrimValues trims whitespace around subfield values during parsing.
	TrimValues bool `yaml:"trim-values"`
	// Stylesheet switches from the builtin mapping to an external XSLT.
	Stylesheet string `yaml:"stylesheet"`
	// XSLTCommand overrides the external processor invocation.
	XSLTCommand string `yaml:"xslt-command"`
	SRU         SRU    `yaml:"sru"`
}

// SRU settings for identifier list ingestion.
type SRU struct {
	Endpoint   string `yaml:"endpoint"`
	MaxRecords int    `yaml:"max-records"`
	// PreferISBN and PreferISSN are the bibliographic type prefixes (002@
	// $0) used to pick the best candidate record.
	PreferISBN string `yaml:"prefer-isbn"`
	PreferISSN string `yaml:"prefer-issn"`
}

// Default returns the builtin configuration, rooted under the XDG data dir.
func Default() Config {
	return Config{
		MapperPath: path.Join(xdg.DataHome, "picakit", "idmapper.properties"),
		OutputDir:  path.Join(xdg.DataHome, "picakit", "objects"),
		Status:     "published",
		SRU: SRU{
			MaxRecords: 10,
			PreferISBN: "Aa",
			PreferISSN: "Abv",
		},
	}
}

// Load reads a config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(p string) (Config, error) {
	c := Default()
	if p == "" {
		return c, nil
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}
