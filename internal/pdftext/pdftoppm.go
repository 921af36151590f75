package pdftext

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// PdftoppmRasterizer renders pages to PNG with poppler's pdftoppm.
type PdftoppmRasterizer struct {
	// Binary defaults to "pdftoppm" from PATH.
	Binary string
}

func (r PdftoppmRasterizer) Rasterize(ctx context.Context, pdf []byte, scale float64) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "cv-screener-pages-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, pdf, 0o600); err != nil {
		return nil, err
	}

	binary := r.Binary
	if binary == "" {
		binary = "pdftoppm"
	}

	dpi := strconv.Itoa(int(72 * scale))
	cmd := exec.CommandContext(ctx, binary, "-png", "-r", dpi, input, filepath.Join(dir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", binary, err, strings.TrimSpace(string(out)))
	}

	files, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, err
	}
	sortPages(files)

	pages := make([][]byte, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		pages = append(pages, data)
	}
	return pages, nil
}

// sortPages orders pdftoppm output ("page-1.png", "page-02.png") by page number.
func sortPages(files []string) {
	number := func(path string) int {
		name := strings.TrimSuffix(filepath.Base(path), ".png")
		n, _ := strconv.Atoi(name[strings.LastIndex(name, "-")+1:])
		return n
	}
	sort.SliceStable(files, func(i, j int) bool { return number(files[i]) < number(files[j]) })
}
