package interpolation

import (
	"strings"
	"testing"

	"github.com/kkahadze/mkhedruli-megruli/internal/translit"
)

func TestProtectRestore(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		in        string
		wantSpans []string
	}{
		{"none", "margali", nil},
		{"dollar var", "hello ${name}!", []string{"${name}"}},
		{"positional", "{0} da {1}", []string{"{0}", "{1}"}},
		{"mustache wins over inner braces", "{{user}} vore", []string{"{{user}}"}},
		{"printf", "%s: %2d%%", []string{"%s", "%2d", "%%"}},
		{"url", "see https://example.ge/Page?x=1 now", []string{"https://example.ge/Page?x=1"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			protected, mappings := Protect(tt.in)
			if len(mappings) != len(tt.wantSpans) {
				t.Fatalf("mappings = %+v, want spans %q", mappings, tt.wantSpans)
			}
			for i, m := range mappings {
				if m.Original != tt.wantSpans[i] || m.Index != i+1 {
					t.Errorf("mapping %d = %+v, want %q", i, m, tt.wantSpans[i])
				}
				if strings.Contains(protected, m.Original) {
					t.Errorf("protected text %q still contains %q", protected, m.Original)
				}
			}
			if got := Restore(protected, mappings); got != tt.in {
				t.Errorf("Restore = %q, want %q", got, tt.in)
			}
		})
	}
}

func TestMarkersSurviveTransliteration(t *testing.T) {
	t.Parallel()
	in := "Gamarjoba ${name}, %s k'vali {0} https://Megruli.GE"
	protected, mappings := Protect(in)

	got := Restore(translit.ToScript(protected), mappings)
	want := "გამარჯობა ${name}, %s კვალი {0} https://Megruli.GE"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	back := Restore(translit.ToLatin(protected), mappings)
	if back != in {
		t.Errorf("ToLatin changed protected text: %q", back)
	}
}
