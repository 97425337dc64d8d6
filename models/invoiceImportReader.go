package models

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/xuri/excelize/v2"
)

// ReadImportRows reads the first sheet of an .xlsx workbook or a .csv file. The first non-blank
// row is the header; blank rows are dropped. RowNumber is the 1-based line in the file.
func ReadImportRows(fileName string, r io.Reader) ([]ImportRow, error) {
	if r == nil {
		return nil, errors.New("nil file provided")
	}
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		records, err = readXlsxRecords(r)
	case ".csv":
		records, err = readCsvRecords(r)
	default:
		return nil, utils.NewValidationError("invalid file type: only .xlsx and .csv files are allowed")
	}
	if err != nil {
		return nil, utils.NewValidationError("unable to read %s: %v", filepath.Base(fileName), err)
	}
	return recordsToRows(records), nil
}

func readXlsxRecords(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("workbook has no sheets")
	}
	// raw values keep date cells as serial numbers and amounts without display formatting
	return f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

func readCsvRecords(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func recordsToRows(records [][]string) []ImportRow {
	headerAt := -1
	for i, record := range records {
		if !isBlankRecord(record) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil
	}
	headers := make([]string, len(records[headerAt]))
	seen := make(map[string]int)
	for i, h := range records[headerAt] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column %d", i+1)
		}
		// repeated headers keep their position so neither value is lost
		if n := seen[h]; n > 0 {
			seen[h] = n + 1
			h = fmt.Sprintf("%s (%d)", h, n+1)
		} else {
			seen[h] = 1
		}
		headers[i] = h
	}

	var rows []ImportRow
	for i := headerAt + 1; i < len(records); i++ {
		record := records[i]
		if isBlankRecord(record) {
			continue
		}
		values := make(map[string]string, len(headers))
		for j, h := range headers {
			if j < len(record) {
				values[h] = strings.TrimSpace(record[j])
			}
		}
		rows = append(rows, ImportRow{RowNumber: i + 1, Values: values})
	}
	return rows
}
