// Package testutil builds PDF fixtures for tests.
package testutil

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDF renders each page as a list of lines, one text cell per line, using a
// core font so the content stream carries plain WinAnsi strings.
func PDF(pages ...[]string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetFont("Helvetica", "", 11)
	for _, lines := range pages {
		pdf.AddPage()
		for _, l := range lines {
			pdf.CellFormat(0, 6, l, "", 1, "L", false, 0, "")
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ZeroPagePDF is a structurally complete PDF whose page tree is empty.
func ZeroPagePDF() []byte {
	return RawPDF(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
	)
}

// RawPDF assembles numbered objects (1 0 obj, 2 0 obj, ...) with a correct
// cross-reference table. Object 1 must be the catalog.
func RawPDF(objects ...string) []byte {
	var b bytes.Buffer
	offsets := make([]int, 0, len(objects))
	b.WriteString("%PDF-1.4\n")
	for i, obj := range objects {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return b.Bytes()
}

// Stream renders an uncompressed stream object body; dict holds the entries
// other than /Length.
func Stream(dict, data string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(data), data)
}
