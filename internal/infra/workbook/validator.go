package workbook

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"sellerhub-agent/internal/domain"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"

	// DefaultMaxUploadBytes is the ceiling applied when config is silent.
	DefaultMaxUploadBytes = 10 << 20
)

// Validator gates spreadsheet uploads before any network call: media type,
// extension and size. Row counting is a separate, presentation-layer check
// used only by flows that document a row ceiling.
type Validator struct {
	maxBytes int64
	maxRows  int
}

func NewValidator(maxBytes int64, maxRows int) *Validator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Validator{maxBytes: maxBytes, maxRows: maxRows}
}

// Validate checks name, size and reported media type. The extension check
// exists because browsers and proxies routinely report a generic MIME type
// for perfectly valid workbooks.
func (v *Validator) Validate(name string, size int64, mime string) error {
	if !spreadsheetType(name, mime) {
		return fmt.Errorf("%q (%s): %w", name, mime, domain.ErrInvalidFileType)
	}
	if size > v.maxBytes {
		return fmt.Errorf("%q is %d bytes, limit %d: %w", name, size, v.maxBytes, domain.ErrFileTooLarge)
	}
	return nil
}

func spreadsheetType(name, mime string) bool {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case mimeXLSX, mimeXLS:
		return true
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return true
	}
	return false
}

// CountRows opens the workbook and counts the rows of its first sheet,
// enforcing the configured ceiling when one is set. Callers in flows
// without a documented row limit skip this entirely.
func (v *Validator) CountRows(r io.Reader) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	n := len(rows)
	if v.maxRows > 0 && n > v.maxRows {
		return n, fmt.Errorf("%d rows, limit %d: %w", n, v.maxRows, domain.ErrTooManyRows)
	}
	return n, nil
}
