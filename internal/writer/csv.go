package writer

import (
	"bytes"
	"encoding/csv"
	"os"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type csvFormat struct{}

// write prefixes a BOM so spreadsheet apps detect UTF-8 for Cyrillic titles.
func (csvFormat) write(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func (csvFormat) read(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
