package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/fiscal-extract/constants"
)

// PageMarker heads the text of page n (1-based) in multi-page OCR output.
func PageMarker(n int) string {
	return fmt.Sprintf("--- INÍCIO PÁGINA %d ---", n)
}

// CountPages counts the page markers in joined OCR text.
func CountPages(text string) int {
	return strings.Count(text, "--- INÍCIO PÁGINA ")
}

// JoinPages concatenates per-page text, each page preceded by its marker.
func JoinPages(pages []string) string {
	parts := make([]string, 0, len(pages))
	for i, p := range pages {
		parts = append(parts, "\n"+PageMarker(i+1)+"\n\n"+p)
	}
	return strings.Join(parts, "\n")
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.PDF, Method: "pdf-ocr", Language: e.cfg.TesseractLang}

	total, err := api.PageCountFile(path)
	if err != nil {
		// pdftoppm is more forgiving than pdfcpu with damaged files
		res.Warnings = append(res.Warnings, "page count: "+err.Error())
		total = 0
	}
	last := total
	if e.cfg.MaxPages > 0 && (last == 0 || last > e.cfg.MaxPages) {
		last = e.cfg.MaxPages
		if total > e.cfg.MaxPages {
			res.Warnings = append(res.Warnings, fmt.Sprintf("only the first %d of %d pages were read", e.cfg.MaxPages, total))
		}
	}

	tmpDir, err := os.MkdirTemp("", "fx-pp-*")
	if err != nil {
		return res, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			e.logger.Warn("ocr.tmpdir.remove_failed", "dir", path, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png [-f 1 -l N] <in.pdf> <tmp/page>
	args := []string{"-r", fmt.Sprint(e.cfg.DPI), "-png"}
	if last > 0 {
		args = append(args, "-f", "1", "-l", fmt.Sprint(last))
	}
	args = append(args, path, prefix)
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...); err != nil {
		res.Warnings = append(res.Warnings, string(errb))
		return res, toolErr("pdftoppm", err)
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sortPages(matches)
	if len(matches) == 0 {
		res.Warnings = append(res.Warnings, "pdftoppm produced no images")
		return res, fmt.Errorf("no pages rendered")
	}

	pages := make([]string, 0, len(matches))
	for _, img := range matches {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		txt, w, err := e.tesseractOCR(ctx, img)
		res.Warnings = append(res.Warnings, w...)
		if err != nil {
			res.Warnings = append(res.Warnings, err.Error())
			pages = append(pages, "")
			continue
		}
		pages = append(pages, Normalize(txt))
	}

	res.Text = JoinPages(pages)
	res.Pages = len(matches)
	res.Confidence = heuristicConfidence(res.Text)
	return res, nil
}

// sortPages orders pdftoppm outputs numerically. pdftoppm zero-pads page
// numbers to the width of the last page, so equal-width names sort correctly
// and shorter names come first.
func sortPages(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		if len(paths[i]) != len(paths[j]) {
			return len(paths[i]) < len(paths[j])
		}
		return paths[i] < paths[j]
	})
}
