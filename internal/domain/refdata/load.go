package refdata

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
)

//go:embed default.yaml
var defaultData []byte

// document is the on-disk YAML layout.
type document struct {
	Issuers  []Issuer `yaml:"issuers"`
	Aliases  []Alias  `yaml:"aliases"`
	Skills   []string `yaml:"skills"`
	Keywords Keywords `yaml:"keywords"`
}

var defaultTables = sync.OnceValues(func() (*Tables, error) {
	return Parse(defaultData)
})

// Parse decodes YAML reference data. Unknown fields are rejected.
func Parse(data []byte) (*Tables, error) {
	var doc document
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTables, err)
	}
	if len(doc.Issuers) == 0 {
		return nil, fmt.Errorf("%w: no issuers defined", ErrInvalidTables)
	}
	return New(doc.Issuers, doc.Aliases, doc.Skills, doc.Keywords)
}

// LoadFile reads and parses reference data from path.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Default returns the tables compiled into the binary.
func Default() *Tables {
	t, err := defaultTables()
	if err != nil {
		panic(fmt.Sprintf("embedded reference data: %v", err))
	}
	return t
}

// DefaultYAML returns a copy of the embedded reference data source.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultData))
	copy(out, defaultData)
	return out
}
