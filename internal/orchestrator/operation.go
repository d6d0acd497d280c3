package orchestrator

import (
	"context"
	"sort"
	"strings"
)

// Operation is a named task that plans an ordered list of steps.
// Plan evaluates the operation's preconditions and reports an unmet one as a *PreconditionError.
type Operation interface {
	Name() string
	Description() string
	Options() []OptionDefinition
	Plan(executionContext context.Context, session *Session, options Options) (StepList, error)
}

// OptionDefinition declares a caller-supplied option.
type OptionDefinition struct {
	Name     string
	Usage    string
	Default  string
	Required bool
}

// Options holds caller-supplied option values keyed by option name.
type Options map[string]string

// Value returns the trimmed option value or an empty string.
func (options Options) Value(name string) string {
	return strings.TrimSpace(options[name])
}

// List splits a comma separated option value into trimmed, non-empty entries.
func (options Options) List(name string) []string {
	return SplitList(options[name])
}

// SplitList splits a comma separated value into trimmed, non-empty entries.
func SplitList(value string) []string {
	entries := make([]string, 0)
	for _, entry := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(entry)
		if len(trimmed) == 0 {
			continue
		}
		entries = append(entries, trimmed)
	}
	return entries
}

// resolveOptions applies declared defaults and reports the first missing required option.
func resolveOptions(definitions []OptionDefinition, provided Options) (Options, string) {
	resolved := make(Options, len(provided)+len(definitions))
	for name, value := range provided {
		resolved[name] = value
	}

	missing := make([]string, 0)
	for _, definition := range definitions {
		if len(resolved.Value(definition.Name)) > 0 {
			continue
		}
		if len(strings.TrimSpace(definition.Default)) > 0 {
			resolved[definition.Name] = definition.Default
			continue
		}
		if definition.Required {
			missing = append(missing, definition.Name)
		}
	}

	if len(missing) == 0 {
		return resolved, ""
	}
	sort.Strings(missing)
	return resolved, missing[0]
}
