package savedsearch

import "testing"

func TestNew_Valid(t *testing.T) {
	content := map[string]string{"search": "index=main"}
	s, err := New("Failed logins", "SplunkEnterpriseSecuritySuite", "nobody", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Name() != "Failed logins" {
		t.Errorf("Name() = %q", s.Name())
	}
	if s.App() != "SplunkEnterpriseSecuritySuite" {
		t.Errorf("App() = %q", s.App())
	}

	// content is copied on construction
	content["search"] = "changed"
	if v, _ := s.Param("search"); v != "index=main" {
		t.Errorf("Param(search) = %q, want original value", v)
	}
}

func TestNew_MissingName(t *testing.T) {
	if _, err := New("", "search", "admin", nil); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestNew_MissingApp(t *testing.T) {
	if _, err := New("s1", "", "admin", nil); err == nil {
		t.Fatal("expected error for empty app")
	}
}

func TestSetParam_OnReconstructedWithNilContent(t *testing.T) {
	s := Reconstruct("s1", "search", "admin", "", "", nil)
	s.SetParam("description", "x")

	v, ok := s.Param("description")
	if !ok || v != "x" {
		t.Errorf("Param(description) = %q, %v", v, ok)
	}
}

func TestContent_ReturnsCopy(t *testing.T) {
	s := Reconstruct("s1", "search", "admin", "", "", map[string]string{"a": "1"})
	c := s.Content()
	c["a"] = "2"

	if v, _ := s.Param("a"); v != "1" {
		t.Errorf("Content() leaked internal map, Param(a) = %q", v)
	}
}

func TestSelector_Matches(t *testing.T) {
	s := Reconstruct("s1", "search", "admin", "", "", nil)

	tests := []struct {
		name string
		sel  Selector
		want bool
	}{
		{"app only", Selector{App: "search"}, true},
		{"app and name", Selector{App: "search", Name: "s1"}, true},
		{"other app", Selector{App: "launcher"}, false},
		{"other name", Selector{App: "search", Name: "s2"}, false},
		{"name is not a prefix match", Selector{App: "search", Name: "s"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sel.Matches(&s); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelector_FilterKeepsOrder(t *testing.T) {
	all := []SavedSearch{
		Reconstruct("b", "search", "", "", "", nil),
		Reconstruct("x", "launcher", "", "", "", nil),
		Reconstruct("a", "search", "", "", "", nil),
	}

	got := Selector{App: "search"}.Filter(all)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].Name() != "b" || got[1].Name() != "a" {
		t.Errorf("unexpected order: %s, %s", got[0].Name(), got[1].Name())
	}
}

func TestSelector_FilterNoMatch(t *testing.T) {
	all := []SavedSearch{Reconstruct("a", "search", "", "", "", nil)}

	got := Selector{App: "missing"}.Filter(all)
	if len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
}
