package scanning

import (
	"bytes"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// buildPDF writes a one-page PDF with each line drawn 20pt below the last
func buildPDF(lines ...string) []byte {
	var content strings.Builder
	content.WriteString("BT\n/F1 12 Tf\n")
	for i, line := range lines {
		fmt.Fprintf(&content, "1 0 0 1 72.0 %.1f Tm\n(%s) Tj\n", 750.0-20.0*float64(i), line)
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

var _ = Describe("PDFText", func() {
	var (
		scanner     *PDFText
		data        []byte
		contentType string
		text        string
		err         error
	)

	BeforeEach(func() {
		scanner = NewPDFText()
		contentType = "application/pdf"
	})

	AfterEach(func() {
		Expect(scanner.Close()).To(Succeed())
	})

	JustBeforeEach(func() {
		text, err = scanner.ScanText(data, contentType)
	})

	When("the PDF has a text layer", func() {
		BeforeEach(func() {
			data = buildPDF("Invoice Number: INV-1", "GSTIN: 29ABCDE1234F1Z5")
		})

		It("returns the text top to bottom", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(ContainSubstring("Invoice Number: INV-1"))
			Expect(text).To(ContainSubstring("GSTIN: 29ABCDE1234F1Z5"))
			Expect(strings.Index(text, "INV-1")).To(BeNumerically("<", strings.Index(text, "GSTIN")))
		})

		When("the client sent no content type", func() {
			BeforeEach(func() {
				contentType = ""
			})

			It("recognizes the PDF", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(text).To(ContainSubstring("INV-1"))
			})
		})
	})

	When("the PDF has no text", func() {
		BeforeEach(func() {
			data = buildPDF()
		})

		It("returns ErrEmptyText", func() {
			Expect(err).To(MatchError(ErrEmptyText))
		})
	})

	When("the file is an image", func() {
		BeforeEach(func() {
			data = testPNG(2, 2)
			contentType = "image/png"
		})

		It("returns ErrUnsupportedFormat", func() {
			Expect(err).To(MatchError(ErrUnsupportedFormat))
		})
	})

	When("the PDF is corrupt", func() {
		BeforeEach(func() {
			data = []byte("%PDF-1.4\nnot really a pdf")
		})

		It("returns an error", func() {
			Expect(err).To(HaveOccurred())
			Expect(text).To(BeEmpty())
		})
	})
})
