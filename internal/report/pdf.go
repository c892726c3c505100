package report

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// SaveSummaryPDF renders the decode summary into a PDF document. When the
// summary carries a file hash, a QR code of it is embedded on the page.
func SaveSummaryPDF(s Summary, out string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Decode Summary", false)
	pdf.SetAuthor("fzctl", false)
	pdf.SetCreator("fzctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	addPDFTitle(pdf, "Decode Summary")
	addFileSection(pdf, s)
	addCountersSection(pdf, s)
	addRecordTypeSection(pdf, s.RecordCounts)
	addHashSection(pdf, s.Sha256)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addFileSection(pdf *gofpdf.Fpdf, s Summary) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "File")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: "Path", value: emptyFallback(s.File, "-")},
		{label: "Size", value: formatSize(s.SizeBytes)},
		{label: "Run Number", value: runLabel(s.RunNumber)},
		{label: "Season", value: seasonLabel(s.SeasonYear)},
		{label: "Decode Time", value: durationLabel(s.Duration())},
		{label: "Outcome", value: outcomeLabel(s.Error)},
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, item.value, "", 1, "L", false, 0, "")
	}
	if msg := strings.TrimSpace(s.Error); msg != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 4, msg, "", "L", false)
	}
	pdf.Ln(4)
}

func addCountersSection(pdf *gofpdf.Fpdf, s Summary) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Counters")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value int64
	}{
		{label: "Physical Records", value: s.Frames},
		{label: "Bank Records", value: s.Records},
		{label: "Resynchronisations", value: s.Resyncs},
		{label: "Discarded Frames", value: s.Discards},
	}
	for _, item := range items {
		pdf.CellFormat(50, 6, item.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, strconv.FormatInt(item.value, 10), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addRecordTypeSection(pdf *gofpdf.Fpdf, counts map[string]int64) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Record Types")
	pdf.Ln(9)

	if len(counts) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No records decoded.", "", "L", false)
		pdf.Ln(2)
		return
	}

	headers := []string{"Type", "Count"}
	widths := []float64{60, 40}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	pdf.SetFont("Helvetica", "", 9)
	for _, name := range names {
		pdf.CellFormat(widths[0], 6, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, strconv.FormatInt(counts[name], 10), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func addHashSection(pdf *gofpdf.Fpdf, hash string) {
	if strings.TrimSpace(hash) == "" {
		return
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "SHA-256")
	pdf.Ln(8)

	pdf.SetFont("Courier", "", 9)
	pdf.MultiCell(0, 5, strings.ToLower(strings.TrimSpace(hash)), "", "L", false)
	pdf.Ln(2)

	png, err := HashToQR(hash, 256)
	if err != nil {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("summary-hash-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("summary-hash-qr", pdf.GetX(), pdf.GetY(), 40, 40, true, opts, 0, "")
}

func formatSize(b int64) string {
	if b < 0 {
		b = 0
	}
	return fmt.Sprintf("%d bytes", b)
}

func runLabel(run uint32) string {
	if run == 0 {
		return "-"
	}
	return strconv.FormatUint(uint64(run), 10)
}

func seasonLabel(year int) string {
	if year == 0 {
		return "-"
	}
	return strconv.Itoa(year)
}

func durationLabel(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func outcomeLabel(errMsg string) string {
	if strings.TrimSpace(errMsg) == "" {
		return "OK"
	}
	return "ERROR"
}

func emptyFallback(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return val
}
