package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Kunde möchte Rückruf am Montag", "Kunde möchte Rückruf am Montag"},
		{"tags stripped", "<b>wichtig</b> bitte anrufen", "wichtig bitte anrufen"},
		{"script removed", `<script>alert("x")</script>Notiz`, `alert("x")Notiz`},
		{"encoded tag stripped after decode", "&lt;img src=x onerror=y&gt;Hallo", "Hallo"},
		{"whitespace trimmed", "  Notiz  ", "Notiz"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextPtr(t *testing.T) {
	if got := TextPtr(nil); got != nil {
		t.Fatalf("TextPtr(nil) = %v, want nil", got)
	}

	in := "<i>kursiv</i>"
	got := TextPtr(&in)
	if got == nil || *got != "kursiv" {
		t.Fatalf("TextPtr(%q) = %v, want kursiv", in, got)
	}
}
