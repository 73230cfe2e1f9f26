// Package export renders the lead list as CSV or Excel for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/jordanlanch/leadpipe/pkg/models"
)

// Supported formats
const (
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
)

var headers = []string{
	"ID", "Nome", "Empresa", "Email", "Telefone", "Cargo", "Origem",
	"Status", "Responsável", "Score", "Temperatura", "Valor", "Criado em",
}

// ValidFormat reports whether format is a supported export format.
func ValidFormat(format string) bool {
	return format == FormatCSV || format == FormatExcel
}

// WriteCSV streams the lead list as CSV.
func WriteCSV(w io.Writer, leads []models.Lead) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, lead := range leads {
		if err := writer.Write(leadRow(lead)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return writer.Error()
}

// WriteExcel streams the lead list as an xlsx workbook.
func WriteExcel(w io.Writer, leads []models.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leads"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, lead := range leads {
		for colIdx, value := range leadRow(lead) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	f.SetActiveSheet(index)
	return f.Write(w)
}

func leadRow(lead models.Lead) []string {
	return []string{
		strconv.Itoa(lead.ID),
		lead.Name,
		deref(lead.Company),
		lead.Email,
		deref(lead.Phone),
		deref(lead.Position),
		deref(lead.Source),
		models.LeadStatusLabel(lead.Status),
		deref(lead.Responsible),
		strconv.Itoa(lead.Score),
		lead.Temperature,
		fmt.Sprintf("%.2f", lead.Value),
		lead.CreatedAt.Format("2006-01-02"),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
