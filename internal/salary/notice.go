package salary

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// NoticeWriter renders a salary change notice PDF for a completed draft.
type NoticeWriter struct {
	Dir string
}

func NewNoticeWriter(dir string) *NoticeWriter {
	return &NoticeWriter{Dir: dir}
}

func (w *NoticeWriter) Write(draft Draft, employeeName string, items []ChangeItem) (string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join(w.Dir, draft.ID+".pdf")

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Salary Change Notice")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", employeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Effective: %s", draft.EffectiveDate.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Change: %s", draft.Description))
	pdf.Ln(10)

	for _, item := range items {
		marker := ""
		if item.IsChanged {
			marker = " *"
		}
		pdf.Cell(0, 8, fmt.Sprintf("%s: %d -> %d%s", item.ItemName, item.BeforeAmount, item.AfterAmount, marker))
		pdf.Ln(7)
	}
	pdf.Ln(3)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %d -> %d", draft.BeforeTotal, draft.AfterTotal))

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}
	return filePath, nil
}
