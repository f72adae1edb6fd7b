package writer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/journals/internal/types"
)

// ErrUnsupportedFormat is returned for file names whose extension maps to no
// known table format.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// WriteError reports a failed corpus or checkpoint write.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// format reads and writes a whole table, header row included.
type format interface {
	write(path string, rows [][]string) error
	read(path string) ([][]string, error)
}

func formatFor(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return xlsxFormat{}, nil
	case ".csv":
		return csvFormat{}, nil
	case ".db", ".sqlite", ".sqlite3":
		return sqliteFormat{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// FileWriter persists record tables to disk
type FileWriter struct {
	logger *log.Logger
}

// New creates a FileWriter logging through logger.
func New(logger *log.Logger) *FileWriter {
	if logger == nil {
		logger = log.Default()
	}
	return &FileWriter{logger: logger}
}

// Persist writes the full record sequence to filename, replacing any existing
// file. The table format follows the file extension.
func (w *FileWriter) Persist(records []types.JournalRecord, filename string) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, types.Header)
	for _, r := range records {
		rows = append(rows, r.Cells())
	}

	if err := w.writeTable(filename, rows); err != nil {
		w.logger.Error("failed to save records", "file", filename, "records", len(records), "err", err)
		return err
	}
	w.logger.Info("records saved", "file", filename, "records", len(records))
	return nil
}

// WriteRows writes already-read corpus rows under the standard header.
func (w *FileWriter) WriteRows(rows []types.Row, filename string) error {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, types.Header)
	for _, r := range rows {
		table = append(table, r.Cells())
	}
	return w.writeTable(filename, table)
}

// writeTable writes next to the target and renames over it, so an
// interrupted write leaves the previous file intact.
func (w *FileWriter) writeTable(filename string, rows [][]string) error {
	f, err := formatFor(filename)
	if err != nil {
		return &WriteError{Path: filename, Err: err}
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &WriteError{Path: filename, Err: fmt.Errorf("error creating output directory: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return &WriteError{Path: filename, Err: err}
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := f.write(tmpPath, rows); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: filename, Err: err}
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Path: filename, Err: err}
	}
	return nil
}

// Read loads a corpus table, dropping the header row and empty rows. Short
// rows are padded with empty cells.
func Read(path string) ([]types.Row, error) {
	f, err := formatFor(path)
	if err != nil {
		return nil, err
	}
	table, err := f.read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(table) > 0 {
		table = table[1:]
	}

	rows := make([]types.Row, 0, len(table))
	for _, cells := range table {
		if row, ok := types.ParseRow(cells); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
