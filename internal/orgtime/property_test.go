package orgtime

import (
	"reflect"
	"testing"
)

func TestParsePropertyLine(t *testing.T) {
	t.Parallel()
	p, ok := ParsePropertyLine(":ID: abc-123")
	if !ok || p.Key != "ID" || p.Value != "abc-123" {
		t.Errorf("ParsePropertyLine(:ID: abc-123) = %+v, %v, want {ID abc-123}, true", p, ok)
	}
	if _, ok := ParsePropertyLine("not a property"); ok {
		t.Error("ParsePropertyLine(garbage) expected ok = false")
	}
}

func TestFormatPropertyLine(t *testing.T) {
	t.Parallel()
	got := FormatPropertyLine(Property{Key: "CUSTOM_ID", Value: "foo"})
	want := ":CUSTOM_ID: foo"
	if got != want {
		t.Errorf("FormatPropertyLine = %q, want %q", got, want)
	}
}

func TestParseMultiValue(t *testing.T) {
	t.Parallel()
	got := ParseMultiValue(`foo "bar baz" qux`)
	want := []string{"foo", "bar baz", "qux"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseMultiValue = %v, want %v", got, want)
	}
}

func TestFormatMultiValueRoundTrip(t *testing.T) {
	t.Parallel()
	in := []string{"foo", "bar baz", "qux"}
	formatted := FormatMultiValue(in)
	got := ParseMultiValue(formatted)
	if !reflect.DeepEqual(got, in) {
		t.Errorf("round trip through FormatMultiValue/ParseMultiValue = %v, want %v", got, in)
	}
}

func TestIsDrawerMarker(t *testing.T) {
	t.Parallel()
	if !IsDrawerMarker("  :PROPERTIES:", PropertiesOpen) {
		t.Error("IsDrawerMarker should ignore leading whitespace")
	}
	if IsDrawerMarker(":properties:", PropertiesOpen) {
		t.Error("IsDrawerMarker should be case-sensitive")
	}
}
