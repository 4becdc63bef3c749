package template

import (
	"context"
	"fmt"
	"strings"
)

// Overrides supplies user-edited template text keyed by step id. A miss is
// not an error; the built-in default is used instead.
type Overrides interface {
	TemplateOverride(ctx context.Context, stepID string) (string, bool)
}

// Registry resolves one prompt template per pipeline step.
type Registry struct {
	overrides Overrides
}

func NewRegistry(overrides Overrides) *Registry {
	return &Registry{overrides: overrides}
}

// Get returns the template for a step: the user override when present, else
// the built-in default. The step table is fixed, so an unknown step id is a
// programming error and surfaces as an error for the caller to treat as fatal.
func (r *Registry) Get(ctx context.Context, stepID string) (string, error) {
	if r.overrides != nil {
		if tmpl, ok := r.overrides.TemplateOverride(ctx, stepID); ok {
			return tmpl, nil
		}
	}

	tmpl, ok := defaults[stepID]
	if !ok {
		return "", fmt.Errorf("no template for step %q", stepID)
	}
	return tmpl, nil
}

// Fill replaces every occurrence of each {{KEY}} token with its value.
// Tokens without a matching variable are left verbatim: a step with missing
// variables degrades to a literal placeholder rather than failing.
func Fill(tmpl string, vars map[string]string) string {
	filled := tmpl
	for key, value := range vars {
		filled = strings.ReplaceAll(filled, "{{"+key+"}}", value)
	}
	return filled
}
