package raster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
)

var _ Rasterizer = (*Poppler)(nil)

// Poppler renders pages with the pdftoppm command line tool, one process per
// page.
type Poppler struct {
	logger *slog.Logger

	binary  string
	workers int
}

type PopplerOption func(*Poppler)

func NewPoppler(options ...PopplerOption) *Poppler {
	p := &Poppler{
		logger: slog.Default(),

		binary:  "pdftoppm",
		workers: min(max(runtime.NumCPU(), 2), 8),
	}

	for _, option := range options {
		option(p)
	}

	return p
}

func WithPopplerLogger(logger *slog.Logger) PopplerOption {
	return func(p *Poppler) {
		p.logger = logger
	}
}

func WithBinary(path string) PopplerOption {
	return func(p *Poppler) {
		p.binary = path
	}
}

func WithWorkers(workers int) PopplerOption {
	return func(p *Poppler) {
		if workers > 0 {
			p.workers = workers
		}
	}
}

func (p *Poppler) Available() bool {
	_, err := exec.LookPath(p.binary)
	return err == nil
}

func (p *Poppler) Rasterize(ctx context.Context, data []byte, dpi int) ([]Page, error) {
	if !p.Available() {
		return nil, fmt.Errorf("%w: %s not found", ErrUnavailable, p.binary)
	}

	if dpi <= 0 {
		dpi = DefaultDPI
	}

	count, err := PageCount(data)

	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "scanpress-")

	if err != nil {
		return nil, err
	}

	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")

	if err := os.WriteFile(input, data, 0600); err != nil {
		return nil, err
	}

	pages := make([]Page, count)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range count {
		g.Go(func() error {
			content, err := p.renderPage(ctx, input, filepath.Join(dir, fmt.Sprintf("page-%d", i+1)), i+1, dpi)

			if err != nil {
				return err
			}

			pages[i] = Page{
				Index: i,

				Content:     content,
				ContentType: "image/png",
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Debug("rasterized pdf", "pages", count, "dpi", dpi)

	return pages, nil
}

func (p *Poppler) renderPage(ctx context.Context, input, prefix string, page, dpi int) ([]byte, error) {
	args := []string{
		"-png",
		"-r", strconv.Itoa(dpi),
		"-f", strconv.Itoa(page),
		"-l", strconv.Itoa(page),
		"-singlefile",
		input,
		prefix,
	}

	cmd := exec.CommandContext(ctx, p.binary, args...)

	if output, err := cmd.CombinedOutput(); err != nil {
		var exitErr *exec.ExitError

		if errors.As(err, &exitErr) && len(output) > 0 {
			return nil, fmt.Errorf("pdftoppm failed on page %d: %s", page, output)
		}

		return nil, fmt.Errorf("pdftoppm failed on page %d: %w", page, err)
	}

	return os.ReadFile(prefix + ".png")
}
