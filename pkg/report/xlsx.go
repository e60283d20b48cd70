package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ruslano69/rowmap/pkg/core/schema"
)

// WriteXLSX saves t as an Excel workbook.
//
// Headers show column names with domains (e.g. "price (DOUBLE)"), the key
// column is marked with *. Cells are written typed so numbers and dates
// stay numbers and dates in Excel.
//
// Example:
//
//	err := report.WriteXLSX(table, "products.xlsx", "Products")
func WriteXLSX(t *Table, filePath, sheetName string) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = t.Name
		if sheetName == "" {
			sheetName = "Sheet1"
		}
	}

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for col, c := range t.Columns {
		cell := columnName(col+1) + "1"
		header := fmt.Sprintf("%s (%s)", c.Name, c.Domain)
		if c.PrimaryKey {
			header += " *"
		}
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	styles, err := domainStyles(f)
	if err != nil {
		return err
	}

	conv := schema.NewConverter()
	for rowIdx, row := range t.Rows {
		for col, c := range t.Columns {
			if col >= len(row) {
				continue
			}
			cell := columnName(col+1) + strconv.Itoa(rowIdx+2)
			f.SetCellValue(sheetName, cell, excelValue(conv, row[col], c.Domain))
			if style, ok := styles[c.Domain]; ok {
				f.SetCellStyle(sheetName, cell, cell, style)
			}
		}
	}

	for col := range t.Columns {
		name := columnName(col + 1)
		f.SetColWidth(sheetName, name, name, 15)
	}

	return f.SaveAs(filePath)
}

// ReadXLSX loads a sheet written by WriteXLSX (or any sheet whose first row
// holds column names). Headers without a domain are read as STRING.
func ReadXLSX(filePath, sheetName string) (*Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("sheet %s has no header row", sheetName)
	}

	t := &Table{Name: sheetName}
	for _, header := range rows[0] {
		t.Columns = append(t.Columns, parseHeader(header))
	}

	for _, raw := range rows[1:] {
		row := make([]string, len(t.Columns))
		for col, c := range t.Columns {
			if col < len(raw) {
				row[col] = convertFromExcel(raw[col], c.Domain)
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// parseHeader - parse "name (DOMAIN)" or "name (DOMAIN) *"
func parseHeader(header string) schema.Column {
	c := schema.Column{Name: strings.TrimSpace(header), Domain: schema.String}

	if strings.HasSuffix(header, " *") {
		c.PrimaryKey = true
		header = strings.TrimSuffix(header, " *")
		c.Name = strings.TrimSpace(header)
	}

	if idx := strings.LastIndex(header, "("); idx > 0 {
		if end := strings.LastIndex(header, ")"); end > idx {
			if d, err := schema.ParseDomain(strings.TrimSpace(header[idx+1 : end])); err == nil {
				c.Name = strings.TrimSpace(header[:idx])
				c.Domain = d
			}
		}
	}

	c.Attribute = c.Name
	return c
}

// excelValue turns a cell's text into a typed Excel value. Text that does
// not parse for the domain is written as is.
func excelValue(conv *schema.Converter, raw string, d schema.Domain) any {
	if raw == "" {
		return ""
	}
	v, err := conv.ToParameter(raw, d)
	if err != nil {
		return raw
	}
	if b, ok := v.(bool); ok {
		if b {
			return "TRUE"
		}
		return "FALSE"
	}
	return v
}

// convertFromExcel - обратное преобразование значения ячейки
func convertFromExcel(value string, d schema.Domain) string {
	if value == "" {
		return ""
	}
	if d == schema.Bool {
		if strings.EqualFold(value, "TRUE") || value == "1" {
			return "1"
		}
		return "0"
	}
	return value
}

// dateFormat keeps dates readable by ReadXLSX.
const dateFormat = "yyyy-mm-dd hh:mm:ss"

// domainStyles creates one number-format style per domain. DOUBLE stays
// "General" so no digits are lost.
func domainStyles(f *excelize.File) (map[schema.Domain]int, error) {
	dateFmt := dateFormat
	specs := map[schema.Domain]*excelize.Style{
		schema.Int:    {NumFmt: 1},  // 0
		schema.String: {NumFmt: 49}, // @
		schema.Date:   {CustomNumFmt: &dateFmt},
	}

	styles := make(map[schema.Domain]int, len(specs))
	for d, spec := range specs {
		id, err := f.NewStyle(spec)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s style: %w", d, err)
		}
		styles[d] = id
	}
	return styles, nil
}

// columnName - convert column index to Excel column name (1 → A, 27 → AA)
func columnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}
