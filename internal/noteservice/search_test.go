package noteservice_test

import (
	"context"
	"testing"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/testutil"
)

func TestSearch(t *testing.T) {
	svc, store, _ := testutil.TestService(t)
	ctx := context.Background()

	files := map[string]string{
		"alpha.md":     "---\ntopic: Widget\n---\nThe widget spins.\nNothing here.\n",
		"sub/beta.md":  "A widget and another widget.\n",
		"sub/gamma.md": "No match at all.\n",
	}
	for p, c := range files {
		if err := store.Write(p, []byte(c)); err != nil {
			t.Fatal(err)
		}
	}

	report, err := svc.Search(ctx, noteservice.SearchOptions{Query: "widget"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if report.Skipped != 0 {
		t.Errorf("skipped = %d, want 0", report.Skipped)
	}
	if len(report.Matches) != 2 {
		t.Fatalf("matches = %+v, want 2 files", report.Matches)
	}
	// Walk order is lexical, so alpha.md comes before sub/beta.md.
	if report.Matches[0].Path != "alpha.md" || report.Matches[1].Path != "sub/beta.md" {
		t.Errorf("match order = %s, %s", report.Matches[0].Path, report.Matches[1].Path)
	}

	// Case-insensitive by default: "Widget" in the frontmatter stayed hidden,
	// but the body line on line 4 matched.
	alpha := report.Matches[0]
	if len(alpha.Lines) != 1 {
		t.Fatalf("alpha lines = %+v", alpha.Lines)
	}
	if alpha.Lines[0] != (models.LineMatch{Line: 4, Text: "The widget spins."}) {
		t.Errorf("alpha line = %+v", alpha.Lines[0])
	}

	// One entry per line even with repeats on it.
	beta := report.Matches[1]
	if len(beta.Lines) != 1 || beta.Lines[0].Line != 1 {
		t.Errorf("beta lines = %+v", beta.Lines)
	}
}

func TestSearch_CaseSensitive(t *testing.T) {
	svc, store, _ := testutil.TestService(t)
	ctx := context.Background()

	if err := store.Write("case.md", []byte("Widget\nwidget\n")); err != nil {
		t.Fatal(err)
	}

	report, err := svc.Search(ctx, noteservice.SearchOptions{Query: "Widget", CaseSensitive: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Matches) != 1 || len(report.Matches[0].Lines) != 1 || report.Matches[0].Lines[0].Line != 1 {
		t.Errorf("case-sensitive matches = %+v", report.Matches)
	}

	report, err = svc.Search(ctx, noteservice.SearchOptions{Query: "Widget"})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Matches) != 1 || len(report.Matches[0].Lines) != 2 {
		t.Errorf("case-insensitive matches = %+v", report.Matches)
	}
}

func TestSearch_IncludeFrontmatter(t *testing.T) {
	svc, store, _ := testutil.TestService(t)
	ctx := context.Background()

	if err := store.Write("fm.md", []byte("---\ntopic: widget\n---\nbody line\n")); err != nil {
		t.Fatal(err)
	}

	report, err := svc.Search(ctx, noteservice.SearchOptions{Query: "widget"})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Matches) != 0 {
		t.Errorf("frontmatter-only hit should be excluded by default: %+v", report.Matches)
	}

	report, err = svc.Search(ctx, noteservice.SearchOptions{Query: "widget", IncludeFrontmatter: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Matches) != 1 || report.Matches[0].Lines[0].Line != 2 {
		t.Errorf("frontmatter matches = %+v", report.Matches)
	}
}

func TestSearch_FolderScope(t *testing.T) {
	svc, store, _ := testutil.TestService(t)
	ctx := context.Background()

	if err := store.Write("top.md", []byte("needle\n")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("sub/inner.md", []byte("needle\n")); err != nil {
		t.Fatal(err)
	}

	report, err := svc.Search(ctx, noteservice.SearchOptions{Query: "needle", Folder: "sub"})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Matches) != 1 || report.Matches[0].Path != "sub/inner.md" {
		t.Errorf("folder-scoped matches = %+v", report.Matches)
	}
}

func TestSearch_SkipsUnparsableNotes(t *testing.T) {
	svc, store, _ := testutil.TestService(t)
	ctx := context.Background()

	if err := store.Write("good.md", []byte("needle here\n")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("broken.md", []byte("---\n: {{{\n---\nneedle too\n")); err != nil {
		t.Fatal(err)
	}
	if err := store.Write("cyclic.md", []byte("---\na: &x\n  b: *x\n---\nneedle too\n")); err != nil {
		t.Fatal(err)
	}

	report, err := svc.Search(ctx, noteservice.SearchOptions{Query: "needle"})
	if err != nil {
		t.Fatalf("Search must not abort on a broken note: %v", err)
	}
	if report.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", report.Skipped)
	}
	if len(report.Matches) != 1 || report.Matches[0].Path != "good.md" {
		t.Errorf("matches = %+v", report.Matches)
	}
}

func TestSearch_NoMatches(t *testing.T) {
	svc, store, _ := testutil.TestService(t)

	if err := store.Write("only.md", []byte("text\n")); err != nil {
		t.Fatal(err)
	}
	report, err := svc.Search(context.Background(), noteservice.SearchOptions{Query: "zzz"})
	if err != nil {
		t.Fatal(err)
	}
	if report.Matches == nil || len(report.Matches) != 0 {
		t.Errorf("matches = %#v, want empty non-nil slice", report.Matches)
	}
}
