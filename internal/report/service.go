package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/leadkhata/leadkhata/internal/customer"
	"github.com/leadkhata/leadkhata/internal/ledger"
)

const sheetName = "Ledger"

// LedgerSource provides the entry sets reports render.
type LedgerSource interface {
	List(ctx context.Context, req ledger.ListRequest) ([]ledger.StatementLine, *ledger.Summary, error)
	Statement(ctx context.Context, customerID primitive.ObjectID) (*ledger.Statement, error)
}

// CustomerSource resolves customer names for report rows.
type CustomerSource interface {
	Get(ctx context.Context, id primitive.ObjectID) (*customer.Customer, error)
	NameIndex(ctx context.Context) (map[string]string, error)
}

// Service renders exportable reports.
type Service struct {
	ledger    LedgerSource
	customers CustomerSource
}

// NewService builds a Service instance.
func NewService(ledgerSrc LedgerSource, customers CustomerSource) *Service {
	return &Service{ledger: ledgerSrc, customers: customers}
}

// LedgerWorkbook renders the matching entries as an XLSX workbook. The caller
// owns closing the file.
func (s *Service) LedgerWorkbook(ctx context.Context, req ledger.ListRequest) (*excelize.File, error) {
	lines, summary, err := s.ledger.List(ctx, req)
	if err != nil {
		return nil, err
	}
	names, err := s.customers.NameIndex(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("report: rename sheet: %w", err)
	}

	headers := []string{"Date", "Customer", "Type", "Weight (kg)", "Rate", "Credit", "Debit", "Balance", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("report: header: %w", err)
		}
	}

	for row, line := range lines {
		e := line.Entry
		name, ok := names[e.CustomerID.Hex()]
		if !ok {
			name = "(deleted customer)"
		}
		kind := string(e.BatteryType)
		if e.IsPaymentOnly {
			kind = "payment"
		}
		values := []interface{}{
			e.Date.Format("2006-01-02"),
			name,
			kind,
			e.TotalWeight,
			e.RatePerKg,
			e.Credit,
			e.Debit,
			line.RunningBalance,
			e.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("report: cell: %w", err)
			}
		}
	}

	totalsRow := len(lines) + 3
	totals := map[int]interface{}{
		1: "Totals",
		4: summary.TotalWeight,
		6: summary.TotalCredit,
		7: summary.TotalDebit,
		8: summary.NetBalance,
	}
	for col, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(col, totalsRow)
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return nil, fmt.Errorf("report: totals: %w", err)
		}
	}
	return f, nil
}

// StatementPDF renders a customer's full statement as a PDF document.
func (s *Service) StatementPDF(ctx context.Context, customerID primitive.ObjectID) ([]byte, error) {
	statement, err := s.ledger.Statement(ctx, customerID)
	if err != nil {
		return nil, err
	}
	cust, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Customer Statement", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(190, 7, cust.Name, "", 1, "C", false, 0, "")
	if cust.Phone != "" {
		pdf.CellFormat(190, 6, cust.Phone, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(220, 220, 220)
	pdf.CellFormat(28, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(24, 7, "Type", "1", 0, "C", true, 0, "")
	pdf.CellFormat(28, 7, "Weight", "1", 0, "C", true, 0, "")
	pdf.CellFormat(24, 7, "Rate", "1", 0, "C", true, 0, "")
	pdf.CellFormat(28, 7, "Credit", "1", 0, "C", true, 0, "")
	pdf.CellFormat(28, 7, "Debit", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Balance", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, line := range statement.Lines {
		e := line.Entry
		kind := string(e.BatteryType)
		if e.IsPaymentOnly {
			kind = "payment"
		}
		pdf.CellFormat(28, 7, e.Date.Format("02-01-2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(24, 7, kind, "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 7, formatAmount(e.TotalWeight), "1", 0, "R", false, 0, "")
		pdf.CellFormat(24, 7, formatAmount(e.RatePerKg), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 7, formatAmount(e.Credit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 7, formatAmount(e.Debit), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, formatAmount(line.RunningBalance), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(95, 8, fmt.Sprintf("Total Credit: %s", formatAmount(statement.TotalCredit)), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 8, fmt.Sprintf("Total Debit: %s", formatAmount(statement.TotalDebit)), "", 1, "L", false, 0, "")
	pdf.CellFormat(190, 8, fmt.Sprintf("Closing Balance: %s", formatAmount(statement.Balance)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
