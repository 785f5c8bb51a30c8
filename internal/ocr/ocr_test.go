package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/fiscal-extract/constants"
	"github.com/joseph-ayodele/fiscal-extract/internal/common"
)

type call struct {
	name string
	args []string
}

// stubRunner answers tesseract with a canned text per input file and fakes
// pdftoppm by writing empty PNGs next to the requested prefix.
type stubRunner struct {
	pages  int
	text   map[string]string
	failOn string
	calls  []call
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, call{name: name, args: args})
	if name == s.failOn {
		return nil, []byte("boom"), errors.New("exit status 1")
	}
	switch name {
	case "pdftoppm":
		prefix := args[len(args)-1]
		for i := 1; i <= s.pages; i++ {
			p := fmt.Sprintf("%s-%d.png", prefix, i)
			if err := os.WriteFile(p, nil, 0o600); err != nil {
				return nil, nil, err
			}
		}
		return nil, nil, nil
	case "tesseract":
		return []byte(s.text[filepath.Base(args[0])]), nil, nil
	}
	return nil, nil, errors.New("unexpected command " + name)
}

func newTestExtractor(r Runner, cfg Config) *Extractor {
	e := NewExtractor(cfg, nil)
	e.runner = r
	return e
}

func TestExtract_Image(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "cupom.jpg")
	require.NoError(t, os.WriteFile(img, []byte("fake"), 0o600))

	r := &stubRunner{text: map[string]string{"cupom.jpg": "CUPOM FISCAL\r\nTOTAL   R$ 10,50\n\n\n\n12/03/2024"}}
	e := newTestExtractor(r, Config{})

	res, err := e.Extract(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, constants.IMAGE, res.SourceType)
	assert.Equal(t, "image-ocr", res.Method)
	assert.Equal(t, 1, res.Pages)
	assert.True(t, strings.HasPrefix(res.Text, "\n--- INÍCIO PÁGINA 1 ---\n\n"))
	assert.Contains(t, res.Text, "TOTAL R$ 10,50\n\n12/03/2024")
	assert.Greater(t, res.Confidence, float32(0.5))

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{img, "stdout", "-l", "por", "--oem", "1", "--psm", "3"}, r.calls[0].args)
}

func TestExtract_PDF(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "nota.pdf")
	// not a real PDF: page counting fails and rasterization proceeds without a range
	require.NoError(t, os.WriteFile(pdf, []byte("junk"), 0o600))

	r := &stubRunner{pages: 2, text: map[string]string{
		"page-1.png": "primeira",
		"page-2.png": "segunda",
	}}
	e := newTestExtractor(r, Config{TessdataDir: "/share/tessdata"})

	res, err := e.Extract(context.Background(), pdf)
	require.NoError(t, err)

	assert.Equal(t, constants.PDF, res.SourceType)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t,
		"\n--- INÍCIO PÁGINA 1 ---\n\nprimeira\n\n--- INÍCIO PÁGINA 2 ---\n\nsegunda",
		res.Text)
	assert.NotEmpty(t, res.Warnings)

	require.Len(t, r.calls, 3)
	assert.Equal(t, "pdftoppm", r.calls[0].name)
	assert.Equal(t, []string{"-r", "300", "-png"}, r.calls[0].args[:3])
	assert.Contains(t, r.calls[1].args, "--tessdata-dir")
}

func TestExtract_PDFRasterFailure(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "nota.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("junk"), 0o600))

	e := newTestExtractor(&stubRunner{failOn: "pdftoppm"}, Config{})
	_, err := e.Extract(context.Background(), pdf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftoppm")
}

func TestExtract_PlainText(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "ocr.txt")
	body := "\n--- INÍCIO PÁGINA 1 ---\n\nA\n\n--- INÍCIO PÁGINA 2 ---\n\nB"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))

	r := &stubRunner{}
	res, err := newTestExtractor(r, Config{}).Extract(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "plain-text", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Empty(t, r.calls)
}

func TestExtract_Unsupported(t *testing.T) {
	_, err := NewExtractor(Config{}, nil).Extract(context.Background(), "planilha.ods")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"crlf and tabs", "a\r\nb\t\tc", "a\nb c"},
		{"blank runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"trailing spaces", "a   \n  b  ", "a\n b"},
		{"digits untouched", "CFOP 5102 CST 060", "CFOP 5102 CST 060"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestHeuristicConfidence(t *testing.T) {
	low := heuristicConfidence("hello")
	high := heuristicConfidence("DANFE NFC-e CNPJ 12.345.678/0001-90 emitida em 01/02/2024 TOTAL R$ 1.234,56 " +
		strings.Repeat("x", 120))
	assert.InDelta(t, 0.2, low, 0.001)
	assert.InDelta(t, 1.0, high, 0.001)
}

func TestSortPages(t *testing.T) {
	p := []string{"page-10.png", "page-2.png", "page-1.png"}
	sortPages(p)
	assert.Equal(t, []string{"page-1.png", "page-2.png", "page-10.png"}, p)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := execRunner{}
	_, _, err := r.Run(context.Background(), "tesseract-not-installed-here", "in.png", "stdout")
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "tesseract-not-installed-here", te.Tool)
	assert.Contains(t, te.Hint, "TESSERACT_PATH")

	_, _, err = r.Run(context.Background(), "pdftoppm-not-installed-here", "-r", "300")
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Hint, "PDFTOPPM_PATH")
}

func TestExtract_ToolErrorNotDoublePrefixed(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cupom.png")
	require.NoError(t, os.WriteFile(p, nil, 0o600))

	e := NewExtractor(Config{Tesseract: "tesseract-not-installed-here"}, nil)
	_, err := e.Extract(context.Background(), p)
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.True(t, strings.HasPrefix(err.Error(), "tesseract-not-installed-here: "), err.Error())
}

func TestToolHint(t *testing.T) {
	args := []string{"a.png", "stdout", "-l", "por", "--oem", "1"}
	hint := toolHint("/usr/bin/tesseract", args, "Error opening data file\nFailed loading language 'por'\n", errors.New("exit status 1"))
	assert.Equal(t, `traineddata for "por" missing, install tesseract-ocr-por or set TESSDATA_DIR`, hint)

	assert.Equal(t, "pdf is encrypted or damaged",
		toolHint("pdftoppm", nil, "Command Line Error: Incorrect password", errors.New("exit status 1")))
	assert.Equal(t, "", toolHint("tesseract", args, "", errors.New("signal: killed")))
	assert.Equal(t, DefaultLang, langArg([]string{"x.png", "stdout"}))
}
