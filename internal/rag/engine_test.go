package rag

import "testing"

func TestCleanCypherQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "MATCH (n) RETURN n", "MATCH (n) RETURN n"},
		{"fenced", "```cypher\nMATCH (n) RETURN n\n```", "MATCH (n) RETURN n"},
		{"bare fence", "```\nMATCH (n) RETURN n\n```", "MATCH (n) RETURN n"},
		{"whitespace", "  MATCH (n) RETURN n  ", "MATCH (n) RETURN n"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanCypherQuery(tt.input); got != tt.want {
				t.Errorf("cleanCypherQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewEngineModelFallback(t *testing.T) {
	e := NewEngine(nil, nil, "no-such-model")
	if e.config.Name != AvailableModels["flash"].Name {
		t.Errorf("unknown key resolved to %q, want flash fallback", e.config.Name)
	}

	e = NewEngine(nil, nil, "pro")
	if e.config.Name != "gemini-pro-latest" {
		t.Errorf("pro resolved to %q", e.config.Name)
	}
}
