package elisp

import (
	"reflect"
	"testing"
)

func TestEscapeUnescapeStringRoundTrip(t *testing.T) {
	t.Parallel()
	in := `a "quoted" \backslash\`
	escaped := EscapeString(in)
	if escaped != `a \"quoted\" \\backslash\\` {
		t.Errorf("EscapeString = %q", escaped)
	}
	if got := UnescapeString(escaped); got != in {
		t.Errorf("UnescapeString(EscapeString(%q)) = %q", in, got)
	}
}

func TestFormatAlistAndParseAlistRoundTrip(t *testing.T) {
	t.Parallel()
	pairs := [][2]string{{"ID", "abc-123"}, {"TITLE", `a "quoted" title`}}
	formatted := FormatAlist(pairs)
	want := `(("ID" . "abc-123") ("TITLE" . "a \"quoted\" title"))`
	if formatted != want {
		t.Errorf("FormatAlist = %q, want %q", formatted, want)
	}
	got, err := ParseAlist(formatted)
	if err != nil {
		t.Fatalf("ParseAlist error = %v", err)
	}
	if !reflect.DeepEqual(got, pairs) {
		t.Errorf("ParseAlist(FormatAlist(pairs)) = %v, want %v", got, pairs)
	}
}

func TestFormatAlistEmptyIsNil(t *testing.T) {
	t.Parallel()
	if got := FormatAlist(nil); got != "nil" {
		t.Errorf("FormatAlist(nil) = %q, want nil", got)
	}
}

func TestParseAlistNilAndEmpty(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"nil", "", "  "} {
		got, err := ParseAlist(in)
		if err != nil || got != nil {
			t.Errorf("ParseAlist(%q) = %v, %v, want nil, nil", in, got, err)
		}
	}
}

func TestFormatListAndParseListRoundTrip(t *testing.T) {
	t.Parallel()
	items := []string{"work", "home", "a \"tricky\" tag"}
	formatted := FormatList(items)
	got, err := ParseList(formatted)
	if err != nil {
		t.Fatalf("ParseList error = %v", err)
	}
	if !reflect.DeepEqual(got, items) {
		t.Errorf("ParseList(FormatList(items)) = %v, want %v", got, items)
	}
}

func TestFormatListEmptyIsNil(t *testing.T) {
	t.Parallel()
	if got := FormatList(nil); got != "nil" {
		t.Errorf("FormatList(nil) = %q, want nil", got)
	}
}

func TestFormatPlist(t *testing.T) {
	t.Parallel()
	entries := []PlistEntry{{Key: "tags", Value: `("work" "home")`}, {Key: "level", Value: "2"}}
	got := FormatPlist(entries)
	want := `(:tags ("work" "home") :level 2)`
	if got != want {
		t.Errorf("FormatPlist = %q, want %q", got, want)
	}
}

func TestFormatPlistEmptyIsNil(t *testing.T) {
	t.Parallel()
	if got := FormatPlist(nil); got != "nil" {
		t.Errorf("FormatPlist(nil) = %q, want nil", got)
	}
}

func TestParseAlistRejectsMalformedInput(t *testing.T) {
	t.Parallel()
	if _, err := ParseAlist(`("ID" . "abc")`); err == nil {
		t.Error("ParseAlist should reject a pair missing its own parens")
	}
	if _, err := ParseAlist(`(("ID" . "abc-123")`); err == nil {
		t.Error("ParseAlist should reject an unterminated list")
	}
}

func TestParseListRejectsMalformedInput(t *testing.T) {
	t.Parallel()
	if _, err := ParseList(`("a" "b"`); err == nil {
		t.Error("ParseList should reject an unterminated list")
	}
}
