package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/dgallion1/clusterscope/internal/model"
)

// PDFRenderer renders persisted reports as A4 PDF documents. Core fonts
// cannot draw CJK text, so FontPath should name a UTF-8 TrueType font for
// Chinese reports.
type PDFRenderer struct {
	FontPath string
}

type pdfWriter struct {
	pdf  *fpdf.Fpdf
	font string
}

func (p PDFRenderer) Render(r model.Report) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	doc.SetTitle(r.Title, true)
	doc.SetCreator("clusterscope", true)

	font := "Arial"
	if p.FontPath != "" {
		font = "report"
		doc.AddUTF8Font(font, "", p.FontPath)
		doc.AddUTF8Font(font, "B", p.FontPath)
	}
	w := &pdfWriter{pdf: doc, font: font}

	doc.AddPage()
	w.header(r)
	for _, sec := range r.Structure.Sections {
		w.section(sec)
	}
	if len(r.Charts) > 0 {
		doc.AddPage()
		for _, c := range r.Charts {
			w.chart(c)
		}
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("render report %s: %w", r.ID, err)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write report %s: %w", r.ID, err)
	}
	return buf.Bytes(), nil
}

func (w *pdfWriter) header(r model.Report) {
	w.pdf.SetFont(w.font, "B", 16)
	w.pdf.MultiCell(0, 9, r.Structure.Title, "", "C", false)
	w.pdf.SetFont(w.font, "", 9)
	w.pdf.SetTextColor(100, 100, 100)
	meta := []string{DisplayName(r.ReportType)}
	if r.Region != "" {
		meta = append(meta, r.Region)
	}
	if r.Industry != "" {
		meta = append(meta, r.Industry)
	}
	meta = append(meta, r.Date)
	w.pdf.CellFormat(0, 6, strings.Join(meta, " | "), "", 1, "C", false, 0, "")
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.Ln(4)
}

func (w *pdfWriter) section(sec model.Section) {
	w.pdf.SetFont(w.font, "B", 12)
	w.pdf.MultiCell(0, 7, sec.Title, "", "L", false)
	w.pdf.SetFont(w.font, "", 10)
	if sec.Content != "" {
		w.pdf.MultiCell(0, 5, sec.Content, "", "L", false)
	}
	w.pdf.Ln(3)
}

// chart draws a titled table, with proportional bars for scored points.
func (w *pdfWriter) chart(c model.Chart) {
	w.pdf.SetFont(w.font, "B", 11)
	w.pdf.MultiCell(0, 7, c.Title, "", "L", false)
	w.pdf.SetFont(w.font, "", 9)

	scale := 0.0
	for _, pt := range c.Data {
		if v, ok := pointValue(pt); ok && v > scale {
			scale = v
		}
	}
	const labelW, valueW, barMax = 35.0, 25.0, 110.0
	for _, pt := range c.Data {
		label := pt.Name
		if pt.Subject != "" {
			label = pt.Subject
		}
		v, ok := pointValue(pt)
		value := ""
		if ok {
			value = strconv.FormatFloat(v, 'f', -1, 64)
			if pt.Forecast != nil {
				value += "*"
			}
		}
		w.pdf.CellFormat(labelW, 6, label, "1", 0, "L", false, 0, "")
		w.pdf.CellFormat(valueW, 6, value, "1", 0, "R", false, 0, "")
		if ok && scale > 0 {
			x, y := w.pdf.GetXY()
			w.pdf.SetFillColor(70, 130, 180)
			w.pdf.Rect(x+2, y+1, barMax*v/scale, 4, "F")
		}
		w.pdf.Ln(6)
	}
	w.pdf.Ln(4)
}

func pointValue(pt model.ChartPoint) (float64, bool) {
	switch {
	case pt.Value != nil:
		return *pt.Value, true
	case pt.Actual != nil:
		return *pt.Actual, true
	case pt.Forecast != nil:
		return *pt.Forecast, true
	}
	return 0, false
}
