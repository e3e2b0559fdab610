package exchange

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// WriteCSV renders rows with a UTF-8 BOM so spreadsheet apps open the file
// with the right encoding, same as the desktop exporter did.
func WriteCSV(w io.Writer, rows [][]string) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a whole CSV file, stripping a BOM and sniffing the
// delimiter (comma, semicolon or tab). An unparseable file is a format
// error; per-row problems are the importer's business.
func ReadCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	firstLine := string(data)
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	switch {
	case strings.Contains(firstLine, "\t") && !strings.Contains(firstLine, ","):
		cr.Comma = '\t'
	case strings.Contains(firstLine, ";") && !strings.Contains(firstLine, ","):
		cr.Comma = ';'
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("file is not valid CSV: %w", err)
	}
	return rows, nil
}
