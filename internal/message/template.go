// Package message renders post bodies from the configured field-substitution
// template. The placeholder set is closed; templates referencing anything else
// are rejected at startup so a typo in .env fails fast instead of posting
// half-resolved text.
package message

import (
	"fmt"
	"regexp"
	"strings"
)

// Fields are the values a post template can reference.
type Fields struct {
	Title     string
	Excerpt   string
	Link      string
	Published string
	Source    string
}

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

var knownPlaceholders = map[string]func(Fields) string{
	"title":     func(f Fields) string { return f.Title },
	"excerpt":   func(f Fields) string { return f.Excerpt },
	"link":      func(f Fields) string { return f.Link },
	"published": func(f Fields) string { return f.Published },
	"source":    func(f Fields) string { return f.Source },
}

// ValidateTemplate checks that every {placeholder} in the template belongs to
// the known set.
func ValidateTemplate(tmpl string) error {
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		if _, ok := knownPlaceholders[m[1]]; !ok {
			return fmt.Errorf("unknown placeholder {%s}", m[1])
		}
	}
	return nil
}

// Render resolves the template against the given fields. An unknown
// placeholder is a configuration error, not something to silently drop.
func Render(tmpl string, f Fields) (string, error) {
	if err := ValidateTemplate(tmpl); err != nil {
		return "", err
	}
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := strings.Trim(m, "{}")
		return knownPlaceholders[name](f)
	}), nil
}

// UnescapeLiterals converts literal "\n" and "\t" sequences, as they arrive
// from .env values, into real control characters.
func UnescapeLiterals(s string) string {
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	return strings.TrimSpace(s)
}
