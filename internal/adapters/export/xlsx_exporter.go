package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/fonoclinic/backend/internal/domain/entities"
	"github.com/fonoclinic/backend/internal/domain/providers"
)

const (
	// PendingSheetName is the single sheet of the pending-invoice report
	PendingSheetName = "Pendencias_NF"

	// PendingFileName is the download name of the report
	PendingFileName = "relatorio_pendencias.xlsx"

	// XLSXContentType identifies an Office Open XML workbook
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// builtin number format "0.00"
	numFmtTwoDecimals = 2
)

// PendingColumns are the report headers, in column order
var PendingColumns = []string{"Patient Name", "Session Date", "Amount"}

// XLSXExporter writes the pending-invoice list as a one-sheet workbook.
// Rows follow the input order; nothing is re-sorted.
type XLSXExporter struct{}

var _ providers.ReportExporter = (*XLSXExporter)(nil)

// NewXLSXExporter creates a new workbook exporter
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// FileName is the suggested download name
func (e *XLSXExporter) FileName() string {
	return PendingFileName
}

// ContentType is the workbook media type
func (e *XLSXExporter) ContentType() string {
	return XLSXContentType
}

// Export renders the header row followed by one row per item
func (e *XLSXExporter) Export(items []*entities.JoinedSession) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), PendingSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(PendingColumns))
	for i, col := range PendingColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(PendingSheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(PendingSheetName, "A1", "C1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("row %d: nil session", i+1)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			item.PatientName,
			item.Date.Format(entities.DisplayDateLayout),
			item.Amount.Round(2).InexactFloat64(),
		}
		if err := f.SetSheetRow(PendingSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if len(items) > 0 {
		amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals})
		if err != nil {
			return nil, fmt.Errorf("failed to create amount style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(3, len(items)+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(PendingSheetName, "C2", last, amountStyle); err != nil {
			return nil, fmt.Errorf("failed to style amounts: %w", err)
		}
	}

	if err := f.SetColWidth(PendingSheetName, "A", "A", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(PendingSheetName, "B", "C", 14); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
