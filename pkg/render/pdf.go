package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/barcode"
)

// Artifact is the resolved content handed to the renderer.
type Artifact struct {
	Title            string
	Body             string
	VerificationCode string
}

// PDFRenderer turns resolved document content into a PDF artifact.
// Every artifact embeds the verification code both as text and as a QR
// code, so the code stays recoverable from a printed copy even when
// text extraction is unreliable.
type PDFRenderer struct{}

// NewPDFRenderer constructs a PDF renderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render produces the PDF bytes for the artifact. Failures surface as
// errors, never as an empty or truncated document.
func (r *PDFRenderer) Render(doc Artifact) ([]byte, error) {
	if doc.Title == "" || strings.TrimSpace(doc.Body) == "" {
		return nil, fmt.Errorf("artifact requires a title and body")
	}
	if doc.VerificationCode == "" {
		return nil, fmt.Errorf("artifact requires a verification code")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, strings.ToUpper(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	for _, line := range strings.Split(doc.Body, "\n") {
		line = strings.TrimRight(line, " ")
		if line == "" {
			pdf.Ln(4)
			continue
		}
		pdf.MultiCell(0, 6, line, "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Document Verification", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "This document is authentic and can be verified using the code below:", "", 1, "C", false, 0, "")
	pdf.SetFont("Courier", "B", 13)
	pdf.CellFormat(0, 8, doc.VerificationCode, "", 1, "C", false, 0, "")

	key := barcode.RegisterQR(pdf, doc.VerificationCode, qr.M, qr.Auto)
	pageWidth, _ := pdf.GetPageSize()
	size := 30.0
	barcode.Barcode(pdf, key, (pageWidth-size)/2, pdf.GetY()+2, size, size, false)
	pdf.SetY(pdf.GetY() + size + 6)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, "Scan the QR code or visit the verification portal to authenticate this document.", "", 1, "C", false, 0, "")

	if pdf.Err() {
		return nil, fmt.Errorf("render pdf: %v", pdf.Error())
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
