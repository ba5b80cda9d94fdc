package query

import (
	"testing"
	"time"

	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/orgdoc"
	"github.com/jra3/orgctl/internal/orgtime"
)

func mustParseTS(t *testing.T, s string) *orgtime.Timestamp {
	t.Helper()
	ts, _, err := orgtime.ParseTimestamp(s)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q) error = %v", s, err)
	}
	return ts
}

func TestCollectAgendaSingleDay(t *testing.T) {
	t.Parallel()
	h := &orgdoc.Headline{Pos: 5, Planning: &orgdoc.Planning{Scheduled: mustParseTS(t, "<2026-08-02 Sun>")}}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{h}}

	items := CollectAgenda("a.org", doc)
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Type != AgendaScheduled || items[0].HeadlinePos != 5 {
		t.Errorf("items[0] = %+v", items[0])
	}
}

func TestCollectAgendaExpandsRange(t *testing.T) {
	t.Parallel()
	ts := mustParseTS(t, "<2026-08-01 Sat>--<2026-08-03 Mon>")
	h := &orgdoc.Headline{Planning: &orgdoc.Planning{Scheduled: ts}}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{h}}

	items := CollectAgenda("a.org", doc)
	if len(items) != 3 {
		t.Fatalf("len(items) = %d, want 3", len(items))
	}
	wantDays := []int{1, 2, 3}
	for i, it := range items {
		if it.Date.Day() != wantDays[i] {
			t.Errorf("items[%d].Date = %v, want day %d", i, it.Date, wantDays[i])
		}
	}
}

func TestCollectAgendaCapsRangeExpansion(t *testing.T) {
	t.Parallel()
	ts := mustParseTS(t, "<2020-01-01 Wed>--<2030-01-01 Tue>")
	h := &orgdoc.Headline{Planning: &orgdoc.Planning{Deadline: ts}}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{h}}

	items := CollectAgenda("a.org", doc)
	if len(items) != maxRangeDays {
		t.Errorf("len(items) = %d, want capped at %d", len(items), maxRangeDays)
	}
}

func TestCollectAgendaSkipsHeadlinesWithoutPlanning(t *testing.T) {
	t.Parallel()
	h := &orgdoc.Headline{}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{h}}
	if items := CollectAgenda("a.org", doc); len(items) != 0 {
		t.Errorf("items = %v, want none", items)
	}
}

func TestFilterDateRangeHalfOpen(t *testing.T) {
	t.Parallel()
	day := func(d int) time.Time { return time.Date(2026, time.August, d, 0, 0, 0, 0, time.UTC) }
	items := []AgendaItem{{Date: day(1)}, {Date: day(2)}, {Date: day(3)}}
	got := FilterDateRange(items, day(1), day(3))
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2 (half-open [1,3))", len(got))
	}
}

func TestFilterAllPredicatesMustMatch(t *testing.T) {
	t.Parallel()
	active, done := orgtime.ParseKeywordSequence("TODO | DONE")
	fp := &orgconf.FilePolicy{ActiveKeywords: active, DoneKeywords: done}
	h1 := &orgdoc.Headline{Todo: "TODO", Level: 2}
	h2 := &orgdoc.Headline{Todo: "TODO", Level: 1}
	h3 := &orgdoc.Headline{Todo: "DONE", Level: 2}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{h1, h2, h3}}

	got := Filter(doc.Headlines, fp, doc, ByTodo("TODO"), ByLevel(2))
	if len(got) != 1 || got[0] != h1 {
		t.Errorf("Filter = %v, want [h1]", got)
	}
}

func TestByDoneState(t *testing.T) {
	t.Parallel()
	active, done := orgtime.ParseKeywordSequence("TODO | DONE")
	fp := &orgconf.FilePolicy{ActiveKeywords: active, DoneKeywords: done}
	doc := &orgdoc.Document{}

	if !ByDoneState(true)(fp, doc, &orgdoc.Headline{Todo: "DONE"}) {
		t.Error("ByDoneState(true) should match DONE")
	}
	if ByDoneState(true)(fp, doc, &orgdoc.Headline{Todo: "TODO"}) {
		t.Error("ByDoneState(true) should not match TODO")
	}
	if ByDoneState(false)(fp, doc, &orgdoc.Headline{}) != true {
		t.Error("ByDoneState(false) should match a headline with no keyword")
	}
}

func TestByTagDirectVsInherited(t *testing.T) {
	t.Parallel()
	root := &orgdoc.Headline{Level: 1, Tags: []string{"work"}}
	leaf := &orgdoc.Headline{Level: 2}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{root, leaf}}
	fp := &orgconf.FilePolicy{InheritTags: true}

	if ByTag("work", false)(fp, doc, leaf) {
		t.Error("ByTag(direct) should not see the ancestor's tag")
	}
	if !ByTag("work", true)(fp, doc, leaf) {
		t.Error("ByTag(inherited) should see the ancestor's tag")
	}
}

func TestByPropertyAndHasProperty(t *testing.T) {
	t.Parallel()
	h := &orgdoc.Headline{Properties: []orgtime.Property{{Key: "EFFORT", Value: "1h"}}}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{h}}
	fp := &orgconf.FilePolicy{}

	if !ByProperty("EFFORT", "1h")(fp, doc, h) {
		t.Error("ByProperty should match")
	}
	if ByProperty("EFFORT", "2h")(fp, doc, h) {
		t.Error("ByProperty should not match a different value")
	}
	if !HasProperty("EFFORT")(fp, doc, h) {
		t.Error("HasProperty should match")
	}
	if HasProperty("MISSING")(fp, doc, h) {
		t.Error("HasProperty should not match an absent key")
	}
}

func TestByPriority(t *testing.T) {
	t.Parallel()
	fp := &orgconf.FilePolicy{}
	doc := &orgdoc.Document{}
	if !ByPriority('A')(fp, doc, &orgdoc.Headline{HasPriority: true, Priority: 'A'}) {
		t.Error("ByPriority should match")
	}
	if ByPriority('A')(fp, doc, &orgdoc.Headline{}) {
		t.Error("ByPriority should not match a headline without a priority")
	}
}

func TestNotAndAny(t *testing.T) {
	t.Parallel()
	fp := &orgconf.FilePolicy{}
	doc := &orgdoc.Document{}
	h := &orgdoc.Headline{Level: 1}

	if Not(ByLevel(1))(fp, doc, h) {
		t.Error("Not(ByLevel(1)) should be false for a level-1 headline")
	}
	if !Any(ByLevel(2), ByLevel(1))(fp, doc, h) {
		t.Error("Any should match when one predicate matches")
	}
}

func TestResolveLinkIDFound(t *testing.T) {
	t.Parallel()
	link, _, ok := orgtime.ParseLink("[[id:abc-123][My Note]]")
	if !ok {
		t.Fatal("ParseLink failed")
	}
	ids := IDIndex{"abc-123": {File: "notes.org", HeadlinePos: 42}}
	res := ResolveLink(link, "source.org", map[string]*orgdoc.Document{}, ids)
	if !res.Found || res.TargetFile != "notes.org" || res.TargetHeadlinePos != 42 {
		t.Errorf("ResolveLink(id) = %+v", res)
	}
}

func TestResolveLinkIDMissing(t *testing.T) {
	t.Parallel()
	link, _, _ := orgtime.ParseLink("[[id:ghost]]")
	res := ResolveLink(link, "source.org", map[string]*orgdoc.Document{}, IDIndex{})
	if res.Found {
		t.Error("expected Found = false for an unresolvable id")
	}
}

func TestResolveLinkExternalScheme(t *testing.T) {
	t.Parallel()
	link, _, _ := orgtime.ParseLink("[[https://example.com][a site]]")
	res := ResolveLink(link, "source.org", map[string]*orgdoc.Document{}, IDIndex{})
	if !res.External {
		t.Error("https: link should be classified External")
	}
}

func TestResolveLinkFuzzyHeading(t *testing.T) {
	t.Parallel()
	h := &orgdoc.Headline{Title: "Some Heading", Pos: 10}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{h}}
	link, _, _ := orgtime.ParseLink("[[*Some Heading]]")
	res := ResolveLink(link, "source.org", map[string]*orgdoc.Document{"source.org": doc}, IDIndex{})
	if !res.Found || res.TargetHeadlinePos != 10 {
		t.Errorf("ResolveLink(fuzzy) = %+v", res)
	}
}

func TestResolveLinkCustomID(t *testing.T) {
	t.Parallel()
	h := &orgdoc.Headline{Pos: 20, Properties: []orgtime.Property{{Key: "CUSTOM_ID", Value: "foo"}}}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{h}}
	link, _, _ := orgtime.ParseLink("[[#foo]]")
	res := ResolveLink(link, "source.org", map[string]*orgdoc.Document{"source.org": doc}, IDIndex{})
	if !res.Found || res.TargetHeadlinePos != 20 {
		t.Errorf("ResolveLink(custom-id) = %+v", res)
	}
}

func TestResolveLinkFileWithHeadingSearchOption(t *testing.T) {
	t.Parallel()
	target := &orgdoc.Headline{Title: "Target Heading", Pos: 7}
	targetDoc := &orgdoc.Document{Headlines: []*orgdoc.Headline{target}}
	docs := map[string]*orgdoc.Document{
		"dir/other.org": targetDoc,
	}
	link, _, _ := orgtime.ParseLink("[[file:other.org::*Target Heading]]")
	res := ResolveLink(link, "dir/source.org", docs, IDIndex{})
	if !res.Found {
		t.Fatalf("ResolveLink(file+search) = %+v, want Found", res)
	}
}

func TestCompileSearchAndSearch(t *testing.T) {
	t.Parallel()
	re, err := CompileSearch("milk")
	if err != nil {
		t.Fatalf("CompileSearch error = %v", err)
	}
	h := &orgdoc.Headline{Pos: 0}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{h}}
	content := "* TODO Buy milk\nSome other line.\n"

	matches := Search("a.org", content, re, doc)
	if len(matches) != 1 {
		t.Fatalf("len(matches) = %d, want 1", len(matches))
	}
	if matches[0].Line != 1 || matches[0].HeadlinePos != 0 {
		t.Errorf("matches[0] = %+v", matches[0])
	}
}

func TestSearchAttributesMatchBeforeFirstHeadlineAsMinusOne(t *testing.T) {
	t.Parallel()
	re, _ := CompileSearch("TITLE")
	content := "#+TITLE: Demo\n* Headline\n"
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{{Pos: len("#+TITLE: Demo\n")}}}

	matches := Search("a.org", content, re, doc)
	if len(matches) != 1 || matches[0].HeadlinePos != -1 {
		t.Errorf("matches = %+v, want HeadlinePos -1", matches)
	}
}

func TestVirtualPropertyBuiltins(t *testing.T) {
	t.Parallel()
	h := &orgdoc.Headline{
		Todo: "TODO", HasPriority: true, Priority: 'A', Level: 2,
		Title: "Buy milk", Tags: []string{"errand"},
		Planning: &orgdoc.Planning{Scheduled: mustParseTS(t, "<2026-08-02 Sun>")},
	}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{h}}
	fp := &orgconf.FilePolicy{}

	cases := []struct {
		name string
		want string
	}{
		{VProp, "Buy milk"},
		{VTodo, "TODO"},
		{VPrio, "A"},
		{VLevel, "2"},
		{VTags, ":errand:"},
		{VFile, "a.org"},
		{VSched, "<2026-08-02 Sun>"},
	}
	for _, tc := range cases {
		got, ok := VirtualProperty(fp, doc, h, "a.org", tc.name)
		if !ok || got != tc.want {
			t.Errorf("VirtualProperty(%s) = %q, %v, want %q, true", tc.name, got, ok, tc.want)
		}
	}
}

func TestVirtualPropertyDeadlineAndClosedAbsent(t *testing.T) {
	t.Parallel()
	h := &orgdoc.Headline{}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{h}}
	fp := &orgconf.FilePolicy{}

	if _, ok := VirtualProperty(fp, doc, h, "a.org", VDead); ok {
		t.Error("VDead should be absent when there is no deadline")
	}
	if _, ok := VirtualProperty(fp, doc, h, "a.org", VClosed); ok {
		t.Error("VClosed should be absent when there is no CLOSED stamp")
	}
}

func TestVirtualPropertyFallsBackToInheritedRealProperty(t *testing.T) {
	t.Parallel()
	h := &orgdoc.Headline{Properties: []orgtime.Property{{Key: "EFFORT", Value: "1h"}}}
	doc := &orgdoc.Document{Headlines: []*orgdoc.Headline{h}}
	fp := &orgconf.FilePolicy{}

	got, ok := VirtualProperty(fp, doc, h, "a.org", "EFFORT")
	if !ok || got != "1h" {
		t.Errorf("VirtualProperty(EFFORT) = %q, %v, want 1h, true", got, ok)
	}
}
