package poppler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type call struct {
	name string
	args []string
}

type runnerFake struct {
	calls []call
	err   error
	out   []byte
	// files are created relative to the last argument (the output prefix).
	files func(args []string) []string
}

func (f *runnerFake) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if f.err != nil {
		return f.out, f.err
	}
	if f.files != nil {
		for _, path := range f.files(args) {
			if err := os.WriteFile(path, []byte("png"), 0o600); err != nil {
				return nil, err
			}
		}
	}
	return f.out, nil
}

func newTestRenderer(runner *runnerFake, pages int, countErr error) *Renderer {
	r := New("", 0)
	r.run = runner.run
	r.countPages = func(string) (int, error) { return pages, countErr }
	return r
}

func TestRenderPagesOnePerPage(t *testing.T) {
	runner := &runnerFake{}
	r := newTestRenderer(runner, 3, nil)
	dir := t.TempDir()

	paths, err := r.RenderPages(context.Background(), "/tmp/report.pdf", dir)
	if err != nil {
		t.Fatalf("RenderPages() error = %v", err)
	}
	if len(paths) != 3 || len(runner.calls) != 3 {
		t.Fatalf("expected 3 pages and 3 calls, got %d/%d", len(paths), len(runner.calls))
	}
	for i, p := range paths {
		want := filepath.Join(dir, []string{"page-0001.png", "page-0002.png", "page-0003.png"}[i])
		if p != want {
			t.Fatalf("page %d: expected %q, got %q", i+1, want, p)
		}
	}

	first := runner.calls[0]
	if first.name != "pdftoppm" {
		t.Fatalf("expected default binary, got %q", first.name)
	}
	joined := strings.Join(first.args, " ")
	if !strings.Contains(joined, "-r 300 -png -f 1 -l 1 -singlefile /tmp/report.pdf") {
		t.Fatalf("unexpected args %q", joined)
	}
}

func TestRenderPagesFallsBackWhenPageCountUnknown(t *testing.T) {
	runner := &runnerFake{
		files: func(args []string) []string {
			prefix := args[len(args)-1]
			return []string{prefix + "-10.png", prefix + "-02.png", prefix + "-01.png"}
		},
	}
	r := newTestRenderer(runner, 0, errors.New("malformed xref"))
	dir := t.TempDir()

	paths, err := r.RenderPages(context.Background(), "/tmp/report.pdf", dir)
	if err != nil {
		t.Fatalf("RenderPages() error = %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected single render-all call, got %d", len(runner.calls))
	}
	want := []string{"page-01.png", "page-02.png", "page-10.png"}
	for i, p := range paths {
		if filepath.Base(p) != want[i] {
			t.Fatalf("expected sorted pages %v, got %v", want, paths)
		}
	}
}

func TestRenderPagesFallbackWithoutOutput(t *testing.T) {
	r := newTestRenderer(&runnerFake{}, 0, errors.New("unknown"))
	if _, err := r.RenderPages(context.Background(), "/tmp/x.pdf", t.TempDir()); err == nil {
		t.Fatalf("expected error when no pages were produced")
	}
}

func TestRenderPagesReportsCommandOutput(t *testing.T) {
	runner := &runnerFake{err: errors.New("exit status 1"), out: []byte("Syntax Error: Couldn't read xref table\n")}
	r := newTestRenderer(runner, 2, nil)

	_, err := r.RenderPages(context.Background(), "/tmp/x.pdf", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "Couldn't read xref table") {
		t.Fatalf("expected pdftoppm output in error, got %v", err)
	}
}

func TestRenderPagesStopsOnCancelledContext(t *testing.T) {
	runner := &runnerFake{}
	r := newTestRenderer(runner, 5, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.RenderPages(ctx, "/tmp/x.pdf", t.TempDir()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("expected no command runs, got %d", len(runner.calls))
	}
}

func TestNewAppliesOverrides(t *testing.T) {
	r := New("/usr/local/bin/pdftoppm", 150)
	if r.binary != "/usr/local/bin/pdftoppm" || r.dpi != 150 {
		t.Fatalf("unexpected renderer config %+v", r)
	}
}

func TestCountPagesRejectsNonPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, []byte("plain text"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := CountPages(path); err == nil {
		t.Fatalf("expected error for non-PDF input")
	}
}
