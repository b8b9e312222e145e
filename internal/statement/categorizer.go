// Package statement parses uploaded bank-statement CSV files and assigns
// expense categories to the resulting transactions.
package statement

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"finbook/internal/domain"
)

//go:embed categories.yaml
var defaultCategoriesYAML []byte

// Uncategorized is assigned when no keyword matches.
const Uncategorized = "Uncategorized"

type categoryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type categoriesConfig struct {
	Categories []categoryConfig `yaml:"categories"`
}

type keywordRule struct {
	keyword  string
	category string
}

// Categorizer maps transaction descriptions to categories by case-insensitive
// keyword containment. Business rules are checked before the built-in
// defaults, so a business can override any default mapping.
type Categorizer struct {
	rules []keywordRule
}

// NewCategorizer builds a categorizer from the embedded defaults layered
// under the business's own rules.
func NewCategorizer(businessRules []domain.CategoryRule) (*Categorizer, error) {
	var cfg categoriesConfig
	if err := yaml.Unmarshal(defaultCategoriesYAML, &cfg); err != nil {
		return nil, fmt.Errorf("statement.NewCategorizer: %w", err)
	}

	c := &Categorizer{}
	for _, rule := range businessRules {
		c.rules = append(c.rules, keywordRule{
			keyword:  strings.ToLower(rule.Keyword),
			category: rule.Category,
		})
	}
	for _, cat := range cfg.Categories {
		for _, kw := range cat.Keywords {
			c.rules = append(c.rules, keywordRule{
				keyword:  strings.ToLower(kw),
				category: cat.Name,
			})
		}
	}
	return c, nil
}

// Categorize returns the category for a description and whether any keyword
// matched. First match wins.
func (c *Categorizer) Categorize(description string) (string, bool) {
	desc := strings.ToLower(description)
	for _, rule := range c.rules {
		if rule.keyword != "" && strings.Contains(desc, rule.keyword) {
			return rule.category, true
		}
	}
	return Uncategorized, false
}
