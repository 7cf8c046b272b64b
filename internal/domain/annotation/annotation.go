// Package annotation merges values into a JSON object stored as a saved search parameter.
//
// The stored value is expected to be a JSON object mapping a key to a scalar or a
// list of scalars, e.g. {"mitre_attack":["T1110"],"analytic_story":"Credential Access"}.
// Anything that does not decode as an object is treated as an empty object.
// Existing keys keep their position when the object is re-encoded.
package annotation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Action is the change applied to the target key.
type Action string

// Merge actions.
const (
	// ActionAdd inserts a key that was not present.
	ActionAdd Action = "add"
	// ActionUpdate replaces the value of an existing key.
	ActionUpdate Action = "update"
	// ActionAppend extends the value of an existing key.
	ActionAppend Action = "append"
)

const emptyObject = "{}"

// Result is the outcome of a merge.
type Result struct {
	Value  string // re-encoded JSON object
	Action Action
	Reset  bool // prior value was not a JSON object and was discarded
}

// Merge sets key to values in the JSON object encoded by raw.
//
// When the key exists and appendMode is set, values are appended after the existing
// elements; an existing scalar becomes the first element of the list. Otherwise the
// key is set to exactly values.
func Merge(raw, key string, values []string, appendMode bool) (Result, error) {
	if key == "" {
		return Result{}, fmt.Errorf("annotation key is required")
	}

	doc, obj, reset := decode(raw)

	ops, action, err := buildOps(obj, key, values, appendMode)
	if err != nil {
		return Result{}, err
	}

	p, err := jsonpatch.DecodePatch(ops)
	if err != nil {
		return Result{}, fmt.Errorf("decode patch: %w", err)
	}
	out, err := p.Apply(doc)
	if err != nil {
		return Result{}, fmt.Errorf("apply patch for key %q: %w", key, err)
	}

	return Result{Value: string(out), Action: action, Reset: reset}, nil
}

// Values normalizes a single scalar or a list of scalars into a list.
func Values(v ...string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// decode returns the document to patch, its top-level members and whether raw was discarded.
func decode(raw string) ([]byte, map[string]json.RawMessage, bool) {
	if strings.TrimSpace(raw) == "" {
		return []byte(emptyObject), map[string]json.RawMessage{}, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err != nil || obj == nil {
		// Not an object (malformed, array, scalar or null).
		return []byte(emptyObject), map[string]json.RawMessage{}, true
	}
	return []byte(raw), obj, false
}

type operation struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func buildOps(obj map[string]json.RawMessage, key string, values []string, appendMode bool) ([]byte, Action, error) {
	path := "/" + escapePointer(key)
	list := Values(values...)

	existing, ok := obj[key]
	var (
		ops    []operation
		action Action
	)
	switch {
	case !ok:
		ops = []operation{{Op: "add", Path: path, Value: list}}
		action = ActionAdd
	case !appendMode:
		ops = []operation{{Op: "replace", Path: path, Value: list}}
		action = ActionUpdate
	case isArray(existing):
		for _, v := range list {
			ops = append(ops, operation{Op: "add", Path: path + "/-", Value: v})
		}
		action = ActionAppend
	default:
		merged := make([]json.RawMessage, 0, len(list)+1)
		merged = append(merged, existing)
		for _, v := range list {
			b, err := json.Marshal(v)
			if err != nil {
				return nil, "", fmt.Errorf("encode value: %w", err)
			}
			merged = append(merged, b)
		}
		ops = []operation{{Op: "replace", Path: path, Value: merged}}
		action = ActionAppend
	}

	if len(ops) == 0 {
		// Appending nothing to a list: keep the document as is.
		ops = []operation{{Op: "test", Path: path, Value: existing}}
	}

	b, err := json.Marshal(ops)
	if err != nil {
		return nil, "", fmt.Errorf("encode patch: %w", err)
	}
	return b, action, nil
}

func isArray(v json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(v), []byte("["))
}

// escapePointer escapes a key for use as a JSON pointer token (RFC 6901).
var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapePointer(key string) string {
	return pointerEscaper.Replace(key)
}
