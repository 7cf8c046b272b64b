package patch

import (
	"fmt"
	"strings"
)

// reservedParams cannot be changed through the edit endpoint.
var reservedParams = map[string]bool{"name": true}

// Patch is a single-parameter update of a saved search.
type Patch struct {
	parameter string
	value     string
}

// New validates and creates a Patch.
func New(parameter, value string) (Patch, error) {
	if strings.TrimSpace(parameter) == "" {
		return Patch{}, fmt.Errorf("parameter name is required")
	}
	if reservedParams[parameter] {
		return Patch{}, fmt.Errorf("parameter %q cannot be updated", parameter)
	}
	return Patch{parameter: parameter, value: value}, nil
}

// Parameter returns the parameter name.
func (p Patch) Parameter() string { return p.parameter }

// Value returns the new parameter value.
func (p Patch) Value() string { return p.value }
