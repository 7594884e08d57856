package ports

import (
	"io"

	"datapilot/domain/table"
)

// TableReader parses an uploaded file into an in-memory table.
// Implementations own format detection and column type inference.
type TableReader interface {
	// Read parses the file contents. filename decides the format by
	// extension (.csv, .xls, .xlsx).
	Read(filename string, r io.Reader) (*table.Table, error)
}
