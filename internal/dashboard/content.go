package dashboard

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed content.toml
var defaultContent string

// Section is the editorial copy of one dashboard section.
type Section struct {
	Tab     string   `toml:"tab"`
	Heading string   `toml:"heading"`
	Intro   string   `toml:"intro"`
	Notes   []string `toml:"notes"`
}

// Content is the copy shown around the numbers. The built-in copy can be
// overridden key by key from a TOML file.
type Content struct {
	Title     string  `toml:"title"`
	Caption   string  `toml:"caption"`
	Customers Section `toml:"customers"`
	ACV       Section `toml:"acv"`
	Retention Section `toml:"retention"`
	Funnel    Section `toml:"funnel"`
}

// ContentFileFromEnv returns DASHBOARD_CONTENT_FILE, empty when unset.
func ContentFileFromEnv() string {
	return os.Getenv("DASHBOARD_CONTENT_FILE")
}

// LoadContent returns the built-in copy with path applied on top when set.
func LoadContent(path string) (*Content, error) {
	var c Content
	if _, err := toml.Decode(defaultContent, &c); err != nil {
		return nil, fmt.Errorf("decode built-in content: %w", err)
	}
	if path == "" {
		return &c, nil
	}
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("decode content file %s: %w", path, err)
	}
	return &c, nil
}

// Section returns the copy for a section name, or false if unknown.
func (c *Content) Section(name string) (Section, bool) {
	switch name {
	case SectionCustomers:
		return c.Customers, true
	case SectionACV:
		return c.ACV, true
	case SectionRetention:
		return c.Retention, true
	case SectionFunnel:
		return c.Funnel, true
	}
	return Section{}, false
}
