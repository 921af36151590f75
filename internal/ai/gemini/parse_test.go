package gemini

import "testing"

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "plain", raw: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", raw: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose around", raw: "Here you go: {\"a\":{\"b\":2}} hope it helps", want: `{"a":{"b":2}}`},
		{name: "no object", raw: "nothing", want: "nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.raw); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	for _, in := range []string{"", "  ", "null", "N/A"} {
		v := in
		if got := optional(&v); got != nil {
			t.Fatalf("expected %q to become nil, got %q", in, *got)
		}
	}

	v := "  ana@example.com "
	if got := optional(&v); got == nil || *got != "ana@example.com" {
		t.Fatalf("unexpected value %v", got)
	}
}

func TestRender(t *testing.T) {
	got := render("Hello {{NAME}}, {{NAME}} works as {{ROLE}}", map[string]string{"NAME": "Ana", "ROLE": "engineer"})
	if got != "Hello Ana, Ana works as engineer" {
		t.Fatalf("unexpected render %q", got)
	}
}
