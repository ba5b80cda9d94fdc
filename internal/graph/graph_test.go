package graph

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jra3/orgctl/internal/config"
	"github.com/jra3/orgctl/internal/orgconf"
	"github.com/jra3/orgctl/internal/orgdoc"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func parseForGraph(t *testing.T, content string) (*orgdoc.Document, *orgconf.FilePolicy) {
	t.Helper()
	active, done := orgdoc.DefaultKeywords()
	doc, err := orgdoc.Parse(content, orgdoc.ParseOptions{DefaultActive: active, DefaultDone: done})
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	fp := orgconf.ResolveFile(config.DefaultConfig(), doc)
	return doc, fp
}

func TestOpenInitializesSchemaAndStampsVersion(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != UserVersion {
		t.Errorf("user_version = %d, want %d", version, UserVersion)
	}
}

func TestOpenReopensExistingSameVersion(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("Open(1) error = %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("Open(2) error = %v", err)
	}
	defer s2.Close()
}

func TestOpenRejectsNewerVersion(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("Open(1) error = %v", err)
	}
	if _, err := s1.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("stamp newer version: %v", err)
	}
	s1.Close()

	_, err = Open(path)
	if err == nil {
		t.Fatal("Open should reject a database stamped with a newer user_version")
	}
}

func TestOpenRejectsStaleVersion(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("Open(1) error = %v", err)
	}
	if _, err := s1.db.Exec("PRAGMA user_version = 3"); err != nil {
		t.Fatalf("stamp stale version: %v", err)
	}
	s1.Close()

	_, err = Open(path)
	if err == nil {
		t.Fatal("Open should reject a database stamped with a stale user_version")
	}
}

func TestDeleteHeadlineSubtree(t *testing.T) {
	t.Parallel()
	content := "#+TITLE: T\n* A\n** B\nbody\n* C\n"
	pos := 11 // '*' of "* A"
	out, err := DeleteHeadlineSubtree(content, pos)
	if err != nil {
		t.Fatalf("DeleteHeadlineSubtree error = %v", err)
	}
	if out != "#+TITLE: T\n* C\n" {
		t.Errorf("out = %q, want %q", out, "#+TITLE: T\n* C\n")
	}
}

func TestDeleteHeadlineSubtreeRejectsZeroPosition(t *testing.T) {
	t.Parallel()
	if _, err := DeleteHeadlineSubtree("* A\n", 0); err == nil {
		t.Error("want error for pos=0... ")
	}
}

func TestDeleteHeadlineSubtreeRejectsNegativePosition(t *testing.T) {
	t.Parallel()
	if _, err := DeleteHeadlineSubtree("* A\n", -1); err == nil {
		t.Error("DeleteHeadlineSubtree(-1) should error")
	}
}

func TestAddAliasCreatesAndSkipsDuplicate(t *testing.T) {
	t.Parallel()
	content := "* Node\n:PROPERTIES:\n:ID:       abc\n:END:\n"
	pos := 0

	out, err := AddAlias(content, pos, "old-name")
	if err != nil {
		t.Fatalf("AddAlias error = %v", err)
	}
	if !contains(out, "ROAM_ALIASES") || !contains(out, "old-name") {
		t.Errorf("out = %q, want ROAM_ALIASES drawer with old-name", out)
	}

	out2, err := AddAlias(out, pos, "old-name")
	if err != nil {
		t.Fatalf("AddAlias(dup) error = %v", err)
	}
	if out2 != out {
		t.Errorf("AddAlias of an existing alias should be a no-op, got %q", out2)
	}
}

func TestRemoveAliasDropsPropertyWhenEmpty(t *testing.T) {
	t.Parallel()
	content := "* Node\n:PROPERTIES:\n:ID:       abc\n:ROAM_ALIASES: \"old-name\"\n:END:\n"
	pos := 0

	out, err := RemoveAlias(content, pos, "old-name")
	if err != nil {
		t.Fatalf("RemoveAlias error = %v", err)
	}
	if contains(out, "ROAM_ALIASES") {
		t.Errorf("out = %q, want ROAM_ALIASES property removed", out)
	}
}

func TestAddRefAndRemoveRef(t *testing.T) {
	t.Parallel()
	content := "* Node\n:PROPERTIES:\n:ID:       abc\n:END:\n"
	pos := 0

	out, err := AddRef(content, pos, "@smith2020")
	if err != nil {
		t.Fatalf("AddRef error = %v", err)
	}
	if !contains(out, "ROAM_REFS") || !contains(out, "@smith2020") {
		t.Errorf("out = %q, want ROAM_REFS with @smith2020", out)
	}

	out2, err := RemoveRef(out, pos, "@smith2020")
	if err != nil {
		t.Fatalf("RemoveRef error = %v", err)
	}
	if contains(out2, "ROAM_REFS") {
		t.Errorf("out = %q, want ROAM_REFS drawer removed", out2)
	}
}

func TestSetFiletagsInsertsUpdatesAndRemoves(t *testing.T) {
	t.Parallel()
	content := "* A\n"

	out := SetFiletags(content, []string{"work", "home"})
	if out != "#+FILETAGS: :work:home:\n* A\n" {
		t.Errorf("insert: out = %q", out)
	}

	out2 := SetFiletags(out, []string{"errand"})
	if out2 != "#+FILETAGS: :errand:\n* A\n" {
		t.Errorf("update: out = %q", out2)
	}

	out3 := SetFiletags(out2, nil)
	if out3 != "* A\n" {
		t.Errorf("remove: out = %q", out3)
	}
}

func TestSetFiletagsNoopOnEmptyWithoutExistingLine(t *testing.T) {
	t.Parallel()
	content := "* A\n"
	if out := SetFiletags(content, nil); out != content {
		t.Errorf("SetFiletags(nil) on file without FILETAGS = %q, want unchanged", out)
	}
}

func TestExtractCitationsBracketForm(t *testing.T) {
	t.Parallel()
	content := "See [cite:@smith2020;@jones2021] for details."
	cites := ExtractCitations(content)
	if len(cites) != 2 || cites[0].Key != "smith2020" || cites[1].Key != "jones2021" {
		t.Fatalf("cites = %+v", cites)
	}
}

func TestExtractCitationsOrgRefForm(t *testing.T) {
	t.Parallel()
	content := "As shown in parencite:smith2020,jones2021."
	cites := ExtractCitations(content)
	if len(cites) != 2 || cites[0].Key != "smith2020" || cites[1].Key != "jones2021" {
		t.Fatalf("cites = %+v", cites)
	}
}

func TestExtractCitationsStyleVariant(t *testing.T) {
	t.Parallel()
	content := "[cite/t:@smith2020]"
	cites := ExtractCitations(content)
	if len(cites) != 1 || cites[0].Key != "smith2020" {
		t.Fatalf("cites = %+v", cites)
	}
}

func TestParseRefsCiteAndTypedForms(t *testing.T) {
	t.Parallel()
	refs := parseRefs(`"@smith2020" "https://example.com/paper" "doi:10.1/xyz"`)
	want := []Ref{
		{Ref: "smith2020", Type: "cite"},
		{Ref: "//example.com/paper", Type: "https"},
		{Ref: "10.1/xyz", Type: "doi"},
	}
	if !reflect.DeepEqual(refs, want) {
		t.Errorf("parseRefs = %+v, want %+v", refs, want)
	}
}

func TestNearestNodePicksGreatestNotExceeding(t *testing.T) {
	t.Parallel()
	positions := []nodePos{{ID: "a", Pos: 0}, {ID: "b", Pos: 20}, {ID: "c", Pos: 50}}
	if got := nearestNode(positions, 30); got != "b" {
		t.Errorf("nearestNode(30) = %q, want b", got)
	}
	if got := nearestNode(positions, 5); got != "a" {
		t.Errorf("nearestNode(5) = %q, want a", got)
	}
}

func TestSyncFileAndQueries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	content := `* TODO Buy milk                                                    :errand:
:PROPERTIES:
:ID:       head-1
:ROAM_ALIASES: "milk run"
:END:
See [[id:head-2][Write report]] for context.
* Write report
:PROPERTIES:
:ID:       head-2
:END:
`
	doc, fp := parseForGraph(t, content)
	if err := s.SyncFile(ctx, "a.org", content, "2026-08-01", "2026-08-01", fp, doc); err != nil {
		t.Fatalf("SyncFile error = %v", err)
	}

	n, err := s.FindByID(ctx, "head-1")
	if err != nil {
		t.Fatalf("FindByID error = %v", err)
	}
	if n == nil || n.Title != "Buy milk" || n.Todo != "TODO" {
		t.Fatalf("FindByID(head-1) = %+v", n)
	}

	byAlias, err := s.FindByTitleOrAlias(ctx, "milk run")
	if err != nil {
		t.Fatalf("FindByTitleOrAlias error = %v", err)
	}
	if byAlias == nil || byAlias.ID != "head-1" {
		t.Fatalf("FindByTitleOrAlias(milk run) = %+v", byAlias)
	}

	byTitle, err := s.FindByTitleOrAlias(ctx, "Write report")
	if err != nil {
		t.Fatalf("FindByTitleOrAlias error = %v", err)
	}
	if byTitle == nil || byTitle.ID != "head-2" {
		t.Fatalf("FindByTitleOrAlias(Write report) = %+v", byTitle)
	}

	backlinks, err := s.Backlinks(ctx, "head-2")
	if err != nil {
		t.Fatalf("Backlinks error = %v", err)
	}
	if len(backlinks) != 1 || backlinks[0].ID != "head-1" {
		t.Fatalf("Backlinks(head-2) = %+v", backlinks)
	}

	byTag, err := s.FindByTag(ctx, "errand")
	if err != nil {
		t.Fatalf("FindByTag error = %v", err)
	}
	if len(byTag) != 1 || byTag[0].ID != "head-1" {
		t.Fatalf("FindByTag(errand) = %+v", byTag)
	}
}

func TestSyncFileExcludesRoamExcludeNodes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	content := `* Private note
:PROPERTIES:
:ID:       head-1
:ROAM_EXCLUDE: t
:END:
`
	doc, fp := parseForGraph(t, content)
	if err := s.SyncFile(ctx, "a.org", content, "2026-08-01", "2026-08-01", fp, doc); err != nil {
		t.Fatalf("SyncFile error = %v", err)
	}

	n, err := s.FindByID(ctx, "head-1")
	if err != nil {
		t.Fatalf("FindByID error = %v", err)
	}
	if n != nil {
		t.Errorf("FindByID(head-1) = %+v, want nil (ROAM_EXCLUDE)", n)
	}
}

func TestSyncFileReplacesPreviousRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	content1 := "* TODO Buy milk\n:PROPERTIES:\n:ID:       head-1\n:END:\n"
	doc1, fp1 := parseForGraph(t, content1)
	if err := s.SyncFile(ctx, "a.org", content1, "t0", "t0", fp1, doc1); err != nil {
		t.Fatalf("SyncFile(1) error = %v", err)
	}

	content2 := "* DONE Buy milk\n:PROPERTIES:\n:ID:       head-1\n:END:\n"
	doc2, fp2 := parseForGraph(t, content2)
	if err := s.SyncFile(ctx, "a.org", content2, "t1", "t1", fp2, doc2); err != nil {
		t.Fatalf("SyncFile(2) error = %v", err)
	}

	n, err := s.FindByID(ctx, "head-1")
	if err != nil {
		t.Fatalf("FindByID error = %v", err)
	}
	if n == nil || n.Todo != "DONE" {
		t.Fatalf("FindByID(head-1) = %+v, want Todo=DONE after resync", n)
	}
}

func TestDeleteFileRowsCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := openTestStore(t)

	content := "* TODO Buy milk\n:PROPERTIES:\n:ID:       head-1\n:END:\n"
	doc, fp := parseForGraph(t, content)
	if err := s.SyncFile(ctx, "a.org", content, "t0", "t0", fp, doc); err != nil {
		t.Fatalf("SyncFile error = %v", err)
	}

	if err := s.DeleteFileRows(ctx, "a.org"); err != nil {
		t.Fatalf("DeleteFileRows error = %v", err)
	}

	n, err := s.FindByID(ctx, "head-1")
	if err != nil {
		t.Fatalf("FindByID error = %v", err)
	}
	if n != nil {
		t.Errorf("FindByID(head-1) = %+v, want nil after DeleteFileRows", n)
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
