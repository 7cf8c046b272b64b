package patch

import "testing"

func TestNew_Valid(t *testing.T) {
	p, err := New("action.correlationsearch.annotations", `{"mitre_attack":["T1110"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Parameter() != "action.correlationsearch.annotations" {
		t.Errorf("Parameter() = %q", p.Parameter())
	}
	if p.Value() != `{"mitre_attack":["T1110"]}` {
		t.Errorf("Value() = %q", p.Value())
	}
}

func TestNew_EmptyValueAllowed(t *testing.T) {
	p, err := New("description", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Value() != "" {
		t.Errorf("Value() = %q, want empty", p.Value())
	}
}

func TestNew_EmptyParameter(t *testing.T) {
	for _, param := range []string{"", "   "} {
		if _, err := New(param, "x"); err == nil {
			t.Errorf("expected error for parameter %q", param)
		}
	}
}

func TestNew_ReservedParameter(t *testing.T) {
	if _, err := New("name", "renamed"); err == nil {
		t.Fatal("expected error for reserved parameter")
	}
}
