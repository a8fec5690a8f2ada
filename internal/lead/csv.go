package lead

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readCSV reads every record. A leading byte order mark, as written by
// spreadsheet exports, is dropped.
func readCSV(data []byte) ([][]string, error) {
	r := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(transform.Nop))

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "lead: read csv row")
		}
		rows = append(rows, record)
	}
}
