package update

import (
	"strings"

	"github.com/kailas-cloud/ssbulk/internal/domain"
)

// Request describes one bulk edit run.
type Request struct {
	App       string
	Search    string // optional name filter
	Parameter string
	Values    []string

	// JSONDico treats the parameter as a JSON object and sets Key inside it.
	JSONDico bool
	Key      *string // nil when not given
	Append   bool

	DryRun bool
}

// Validate checks flag consistency. It never touches the remote service.
func (r Request) Validate() error {
	if strings.TrimSpace(r.App) == "" {
		return domain.InvalidConfig("--app is required")
	}
	if strings.TrimSpace(r.Parameter) == "" {
		return domain.InvalidConfig("--parameter is required")
	}
	if len(r.Values) == 0 {
		return domain.InvalidConfig("--value requires at least one value")
	}

	if r.JSONDico {
		if r.Key == nil || *r.Key == "" {
			return domain.InvalidConfig("--key is required when --json-dico is set")
		}
		return nil
	}

	if r.Key != nil {
		return domain.InvalidConfig("--key should not be used when --json-dico is not set")
	}
	if r.Append {
		return domain.InvalidConfig("--append only works with --json-dico")
	}
	if len(r.Values) > 1 {
		return domain.InvalidConfig(
			"--value accepts a single value when --json-dico is not set, got %d", len(r.Values),
		)
	}
	return nil
}

// key returns the JSON key or empty in direct mode.
func (r Request) key() string {
	if r.Key == nil {
		return ""
	}
	return *r.Key
}
