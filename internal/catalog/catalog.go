// Package catalog holds the static allowlists the scanner filters against.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mr-tron/base58"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalidCatalog is returned when a catalog document fails validation.
var ErrInvalidCatalog = errors.New("invalid catalog")

// TokenInfo is display metadata for an allowlisted token.
type TokenInfo struct {
	Mint     string `yaml:"mint"`
	Name     string `yaml:"name"`
	Symbol   string `yaml:"symbol"`
	Decimals *uint8 `yaml:"decimals"`
}

// document is the YAML shape of a catalog file.
type document struct {
	Tokens          []TokenInfo `yaml:"tokens"`
	DeadProjects    []string    `yaml:"dead_projects"`
	DeadCollections []string    `yaml:"dead_collections"`
}

// Catalog is an immutable, validated set of allowlists. Safe for concurrent use.
type Catalog struct {
	tokens          map[string]TokenInfo
	order           []string
	deadProjects    map[string]struct{}
	deadCollections []string
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// LoadFile reads a catalog from path. An empty path returns the embedded default.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return build(doc)
}

func build(doc document) (*Catalog, error) {
	c := &Catalog{
		tokens:       make(map[string]TokenInfo, len(doc.Tokens)+len(doc.DeadProjects)),
		deadProjects: make(map[string]struct{}, len(doc.DeadProjects)),
	}

	for i, tok := range doc.Tokens {
		if err := validateMint(tok.Mint); err != nil {
			return nil, fmt.Errorf("%w: tokens[%d]: %v", ErrInvalidCatalog, i, err)
		}
		if _, dup := c.tokens[tok.Mint]; dup {
			return nil, fmt.Errorf("%w: duplicate token mint %s", ErrInvalidCatalog, tok.Mint)
		}
		c.tokens[tok.Mint] = tok
		c.order = append(c.order, tok.Mint)
	}

	for i, mint := range doc.DeadProjects {
		if err := validateMint(mint); err != nil {
			return nil, fmt.Errorf("%w: dead_projects[%d]: %v", ErrInvalidCatalog, i, err)
		}
		c.deadProjects[mint] = struct{}{}
		// Dead projects qualify even when not listed under tokens.
		if _, ok := c.tokens[mint]; !ok {
			c.tokens[mint] = TokenInfo{Mint: mint}
			c.order = append(c.order, mint)
		}
	}

	for i, pattern := range doc.DeadCollections {
		p := strings.ToLower(strings.TrimSpace(pattern))
		if p == "" {
			return nil, fmt.Errorf("%w: dead_collections[%d] is empty", ErrInvalidCatalog, i)
		}
		c.deadCollections = append(c.deadCollections, p)
	}

	return c, nil
}

func validateMint(mint string) error {
	raw, err := base58.Decode(mint)
	if err != nil {
		return fmt.Errorf("mint %q: %v", mint, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("mint %q decodes to %d bytes", mint, len(raw))
	}
	return nil
}

// IsAllowlisted reports whether mint is eligible for scanning.
func (c *Catalog) IsAllowlisted(mint string) bool {
	_, ok := c.tokens[mint]
	return ok
}

// IsDeadProject reports whether mint belongs to an abandoned project.
func (c *Catalog) IsDeadProject(mint string) bool {
	_, ok := c.deadProjects[mint]
	return ok
}

// Token returns display metadata for mint.
func (c *Catalog) Token(mint string) (TokenInfo, bool) {
	tok, ok := c.tokens[mint]
	return tok, ok
}

// MatchesDeadCollection reports whether an NFT name contains a dead-collection
// pattern, ignoring case.
func (c *Catalog) MatchesDeadCollection(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range c.deadCollections {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Mints returns allowlisted mints in catalog order.
func (c *Catalog) Mints() []string {
	return append([]string(nil), c.order...)
}

// DeadCollections returns the normalized dead-collection patterns.
func (c *Catalog) DeadCollections() []string {
	return append([]string(nil), c.deadCollections...)
}
