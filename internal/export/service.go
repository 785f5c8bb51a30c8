package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/fiscal-extract/internal/common"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

// Formats selects which files WriteFiles produces.
type Formats struct {
	JSON bool
	CSV  bool
	XLSX bool
}

// Service writes export files for processed records into a directory.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// WriteFiles renders rec in each selected format under dir and returns the
// written paths. The CSV is skipped for records without items.
func (s *Service) WriteFiles(dir string, rec *schema.DocumentRecord, formats Formats) ([]string, error) {
	start := time.Now()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, common.NewAppError(common.CodeExport, "create output dir", err)
	}

	type job struct {
		enabled bool
		name    string
		render  func(*schema.DocumentRecord) ([]byte, error)
	}
	jobs := []job{
		{formats.JSON, JSONFileName(rec), JSON},
		{formats.CSV && len(rec.LineItems) > 0, CSVFileName(rec), ItemsCSV},
		{formats.XLSX, XLSXFileName(rec), ItemsXLSX},
	}

	var written []string
	for _, j := range jobs {
		if !j.enabled {
			continue
		}
		b, err := j.render(rec)
		if err != nil {
			return written, common.NewAppError(common.CodeExport, fmt.Sprintf("render %s", j.name), err)
		}
		path := filepath.Join(dir, j.name)
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return written, common.NewAppError(common.CodeExport, fmt.Sprintf("write %s", j.name), err)
		}
		written = append(written, path)
	}

	s.logger.Info("export.write.ok",
		"dir", dir,
		"files", len(written),
		"items", len(rec.LineItems),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return written, nil
}
