// Package poppler rasterizes PDF pages with the pdftoppm command from poppler-utils.
package poppler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	defaultBinary = "pdftoppm"
	defaultDPI    = 300
)

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// PageCounter reports the number of pages in a PDF file.
type PageCounter func(path string) (int, error)

type Renderer struct {
	binary     string
	dpi        int
	run        Runner
	countPages PageCounter
}

func New(binary string, dpi int) *Renderer {
	if strings.TrimSpace(binary) == "" {
		binary = defaultBinary
	}
	if dpi <= 0 {
		dpi = defaultDPI
	}
	return &Renderer{
		binary:     binary,
		dpi:        dpi,
		run:        execRunner,
		countPages: CountPages,
	}
}

func (r *Renderer) RenderPages(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	pages, err := r.countPages(pdfPath)
	if err != nil || pages <= 0 {
		// Page trees ledongthuc cannot parse are still handled by pdftoppm itself.
		return r.renderAll(ctx, pdfPath, outDir)
	}

	paths := make([]string, 0, pages)
	for n := 1; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prefix := filepath.Join(outDir, fmt.Sprintf("page-%04d", n))
		page := strconv.Itoa(n)
		args := []string{"-r", strconv.Itoa(r.dpi), "-png", "-f", page, "-l", page, "-singlefile", pdfPath, prefix}
		if out, err := r.run(ctx, r.binary, args...); err != nil {
			return nil, commandError(err, out)
		}
		paths = append(paths, prefix+".png")
	}
	return paths, nil
}

func (r *Renderer) renderAll(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	prefix := filepath.Join(outDir, "page")
	args := []string{"-r", strconv.Itoa(r.dpi), "-png", pdfPath, prefix}
	if out, err := r.run(ctx, r.binary, args...); err != nil {
		return nil, commandError(err, out)
	}

	paths, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("list rendered pages: %w", err)
	}
	if len(paths) == 0 {
		return nil, errors.New("pdftoppm produced no pages")
	}
	// pdftoppm zero-pads page numbers to the width of the page count, so a lexical sort keeps page order.
	sort.Strings(paths)
	return paths, nil
}

// CountPages reads the page tree of a PDF. Malformed files that make the parser panic are reported as errors.
func CountPages(path string) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			n = 0
			err = fmt.Errorf("parse pdf %s: %v", filepath.Base(path), rec)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func commandError(err error, out []byte) error {
	msg := strings.TrimSpace(string(out))
	if msg == "" {
		return fmt.Errorf("pdftoppm: %w", err)
	}
	return fmt.Errorf("pdftoppm: %w: %s", err, msg)
}
