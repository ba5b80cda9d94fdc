package orgdoc

import (
	"testing"

	"github.com/jra3/orgctl/internal/orgtime"
)

func defaultOpts() ParseOptions {
	active, done := DefaultKeywords()
	return ParseOptions{DefaultActive: active, DefaultDone: done}
}

func TestParseHeadlineFields(t *testing.T) {
	t.Parallel()
	content := `#+TITLE: Demo

* TODO [#A] Buy milk                                              :errand:home:
SCHEDULED: <2026-08-02 Sun>
:PROPERTIES:
:ID:       abc-123
:END:
Some body text.
`
	doc, err := Parse(content, defaultOpts())
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if len(doc.Headlines) != 1 {
		t.Fatalf("len(Headlines) = %d, want 1", len(doc.Headlines))
	}
	h := doc.Headlines[0]
	if h.Todo != "TODO" {
		t.Errorf("Todo = %q, want TODO", h.Todo)
	}
	if !h.HasPriority || h.Priority != 'A' {
		t.Errorf("Priority = %c (has=%v), want A", h.Priority, h.HasPriority)
	}
	if h.Title != "Buy milk" {
		t.Errorf("Title = %q, want %q", h.Title, "Buy milk")
	}
	if len(h.Tags) != 2 || h.Tags[0] != "errand" || h.Tags[1] != "home" {
		t.Errorf("Tags = %v, want [errand home]", h.Tags)
	}
	if h.Planning == nil || h.Planning.Scheduled == nil {
		t.Fatal("Planning.Scheduled = nil, want a timestamp")
	}
	if h.Planning.Scheduled.Day != 2 {
		t.Errorf("Scheduled.Day = %d, want 2", h.Planning.Scheduled.Day)
	}
	foundID := false
	for _, p := range h.Properties {
		if p.Key == "ID" && p.Value == "abc-123" {
			foundID = true
		}
	}
	if !foundID {
		t.Errorf("Properties = %v, want an ID=abc-123 entry", h.Properties)
	}
}

func TestParseNestedHeadlineLevels(t *testing.T) {
	t.Parallel()
	content := "* One\n** Two\n*** Three\n** Two-again\n"
	doc, err := Parse(content, defaultOpts())
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if len(doc.Headlines) != 4 {
		t.Fatalf("len(Headlines) = %d, want 4", len(doc.Headlines))
	}
	wantLevels := []int{1, 2, 3, 2}
	for i, h := range doc.Headlines {
		if h.Level != wantLevels[i] {
			t.Errorf("Headlines[%d].Level = %d, want %d", i, h.Level, wantLevels[i])
		}
	}
}

func TestParseCustomTodoSequence(t *testing.T) {
	t.Parallel()
	content := "#+TODO: TODO NEXT | DONE CANCELLED\n\n* NEXT Ship it\n"
	doc, err := Parse(content, defaultOpts())
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if len(doc.TodoActive) != 2 || doc.TodoActive[1].Name != "NEXT" {
		t.Fatalf("TodoActive = %+v, want [TODO NEXT]", doc.TodoActive)
	}
	if len(doc.TodoDone) != 2 {
		t.Fatalf("TodoDone = %+v, want 2 entries", doc.TodoDone)
	}
	if !doc.IsDone("CANCELLED", nil, nil) {
		t.Error("IsDone(CANCELLED) = false, want true")
	}
	if doc.Headlines[0].Todo != "NEXT" {
		t.Errorf("Headline Todo = %q, want NEXT", doc.Headlines[0].Todo)
	}
}

func TestParseImpossibleDateErrors(t *testing.T) {
	t.Parallel()
	content := "* Task\nSCHEDULED: <2026-02-30 Mon>\n"
	_, err := Parse(content, defaultOpts())
	if err == nil {
		t.Fatal("Parse expected an error for an impossible calendar date")
	}
}

func TestParseMalformedPlanningLineLeavesFieldUnsetInsteadOfAborting(t *testing.T) {
	t.Parallel()
	content := "* Task\nSCHEDULED: <2026-08\nbody text\n"
	doc, err := Parse(content, defaultOpts())
	if err != nil {
		t.Fatalf("Parse error = %v, want the parser to stay total on a merely-malformed (not impossible) timestamp", err)
	}
	if len(doc.Headlines) != 1 {
		t.Fatalf("len(Headlines) = %d, want 1", len(doc.Headlines))
	}
	h := doc.Headlines[0]
	if h.Planning == nil {
		t.Fatal("Planning = nil, want a non-nil Planning with Scheduled left unset")
	}
	if h.Planning.Scheduled != nil {
		t.Errorf("Planning.Scheduled = %+v, want nil for the unterminated timestamp", h.Planning.Scheduled)
	}
}

func TestParseLinksAttributedToNearestHeadline(t *testing.T) {
	t.Parallel()
	content := "* First\nSee [[id:aaa][A]].\n* Second\nSee [[id:bbb][B]].\n"
	doc, err := Parse(content, defaultOpts())
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if len(doc.Links) != 2 {
		t.Fatalf("len(Links) = %d, want 2", len(doc.Links))
	}
	if doc.Links[0].HeadlinePos != doc.Headlines[0].Pos {
		t.Errorf("Links[0].HeadlinePos = %d, want %d", doc.Links[0].HeadlinePos, doc.Headlines[0].Pos)
	}
	if doc.Links[1].HeadlinePos != doc.Headlines[1].Pos {
		t.Errorf("Links[1].HeadlinePos = %d, want %d", doc.Links[1].HeadlinePos, doc.Headlines[1].Pos)
	}
	if doc.Links[0].Type != "id" || doc.Links[0].Path != "aaa" {
		t.Errorf("Links[0] = %+v, want type id path aaa", doc.Links[0])
	}
}

func TestParseFileLevelTagsAndKeywords(t *testing.T) {
	t.Parallel()
	content := "#+TITLE: My File\n#+FILETAGS: :work:project:\n\n* Headline\n"
	doc, err := Parse(content, defaultOpts())
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if len(doc.FileTags) != 2 || doc.FileTags[0] != "work" {
		t.Errorf("FileTags = %v, want [work project]", doc.FileTags)
	}
	var title string
	for _, kw := range doc.Keywords {
		if kw.Key == "TITLE" {
			title = kw.Value
		}
	}
	if title != "My File" {
		t.Errorf("TITLE keyword = %q, want %q", title, "My File")
	}
}

func TestHeadlinePosPointsAtStar(t *testing.T) {
	t.Parallel()
	content := "para\n* Headline\n"
	doc, err := Parse(content, defaultOpts())
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	h := doc.Headlines[0]
	if content[h.Pos] != '*' {
		t.Errorf("content[Pos] = %q, want '*'", content[h.Pos])
	}
	if orgtime.HeadlineStars(content[h.Pos:]) != h.Level {
		t.Errorf("HeadlineStars at Pos = %d, want Level %d", orgtime.HeadlineStars(content[h.Pos:]), h.Level)
	}
}
