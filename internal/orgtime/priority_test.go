package orgtime

import "testing"

func TestParsePriority(t *testing.T) {
	t.Parallel()
	letter, n, ok := ParsePriority("[#A] rest")
	if !ok || letter != 'A' || n != 4 {
		t.Errorf("ParsePriority([#A] rest) = (%c, %d, %v), want ('A', 4, true)", letter, n, ok)
	}
	if _, _, ok := ParsePriority("no cookie here"); ok {
		t.Error("ParsePriority(no cookie) expected ok = false")
	}
	if _, _, ok := ParsePriority("[#a]"); ok {
		t.Error("ParsePriority([#a]) with lowercase letter expected ok = false")
	}
}

func TestParseTagList(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in        string
		wantTitle string
		wantTags  []string
	}{
		{"Buy milk                          :errand:home:", "Buy milk", []string{"errand", "home"}},
		{"Just a title", "Just a title", nil},
		{"Title with a colon: still no tags", "Title with a colon: still no tags", nil},
	}
	for _, tc := range cases {
		title, tags := ParseTagList(tc.in)
		if title != tc.wantTitle {
			t.Errorf("ParseTagList(%q) title = %q, want %q", tc.in, title, tc.wantTitle)
		}
		if len(tags) != len(tc.wantTags) {
			t.Errorf("ParseTagList(%q) tags = %v, want %v", tc.in, tags, tc.wantTags)
			continue
		}
		for i := range tags {
			if tags[i] != tc.wantTags[i] {
				t.Errorf("ParseTagList(%q) tags[%d] = %q, want %q", tc.in, i, tags[i], tc.wantTags[i])
			}
		}
	}
}

func TestFormatTagList(t *testing.T) {
	t.Parallel()
	if got, want := FormatTagList(nil), ""; got != want {
		t.Errorf("FormatTagList(nil) = %q, want %q", got, want)
	}
	if got, want := FormatTagList([]string{"a", "b"}), ":a:b:"; got != want {
		t.Errorf("FormatTagList([a b]) = %q, want %q", got, want)
	}
}
