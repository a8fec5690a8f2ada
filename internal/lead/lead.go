// Package lead parses uploaded lead sheets into call targets.
package lead

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
)

// Lead is one customer to call.
type Lead struct {
	Name     string `json:"name"`
	RawPhone string `json:"raw_phone"`
	Row      int    `json:"row"` // 1-based row in the source, header included
}

// SkippedRow records a source row that could not become a Lead.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Sheet is the parsed content of a lead source.
type Sheet struct {
	Rows    int // data rows, header excluded
	Leads   []Lead
	Skipped []SkippedRow
}

// Format identifies a supported lead source encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFor returns the format implied by filename's extension.
func FormatFor(filename string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, true
	case ".xlsx":
		return FormatXLSX, true
	}
	return "", false
}

// Parse decodes data according to format.
func Parse(format Format, data []byte) (*Sheet, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = readCSV(data)
	case FormatXLSX:
		rows, err = readXLSX(data)
	default:
		return nil, eris.Errorf("lead: unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return FromRows(rows), nil
}

// FromRows builds a Sheet from raw rows. The first row is a header. Column 0
// is the name and column 1 the phone; later columns are ignored.
func FromRows(rows [][]string) *Sheet {
	sheet := &Sheet{}
	if len(rows) == 0 {
		return sheet
	}
	data := rows[1:]
	sheet.Rows = len(data)

	for i, row := range data {
		rowNum := i + 2
		var name, phone string
		if len(row) > 0 {
			name = norm.NFC.String(strings.TrimSpace(row[0]))
		}
		if len(row) > 1 {
			phone = strings.TrimSpace(row[1])
		}

		switch {
		case name == "" && phone == "":
			sheet.Skipped = append(sheet.Skipped, SkippedRow{Row: rowNum, Reason: "missing customer name and phone number"})
		case name == "":
			sheet.Skipped = append(sheet.Skipped, SkippedRow{Row: rowNum, Reason: "missing customer name"})
		case phone == "":
			sheet.Skipped = append(sheet.Skipped, SkippedRow{Row: rowNum, Reason: "missing phone number"})
		default:
			sheet.Leads = append(sheet.Leads, Lead{Name: name, RawPhone: phone, Row: rowNum})
		}
	}
	return sheet
}
