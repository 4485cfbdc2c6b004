package config

import (
	"fmt"
	"strings"
)

// ConfigError reports every problem found in one config file, so a user can
// fix them in a single pass.
type ConfigError struct {
	Path    string
	Missing []string // ${VAR} references with no value in the environment
	Errors  []string // "section.key: problem"
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "config %s: ", e.Path)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "unset environment variables %s", strings.Join(e.Missing, ", "))
		if len(e.Errors) > 0 {
			b.WriteString("; ")
		}
	}
	if len(e.Errors) > 0 {
		fmt.Fprintf(&b, "%d invalid setting(s)", len(e.Errors))
		for _, msg := range e.Errors {
			b.WriteString("\n  - ")
			b.WriteString(msg)
		}
	}
	return b.String()
}

// HasErrors reports whether the file failed to load.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}

// Fields returns the settings named by validation errors, in order.
func (e *ConfigError) Fields() []string {
	fields := make([]string, 0, len(e.Errors))
	for _, msg := range e.Errors {
		field, _, _ := strings.Cut(msg, ":")
		fields = append(fields, field)
	}
	return fields
}
