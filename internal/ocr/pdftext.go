package ocr

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// RecognizePDFText reads the text layer of a PDF. Scanned PDFs without a text
// layer come back empty rather than failing; the field extractor simply finds
// nothing in them.
func RecognizePDFText(ctx context.Context, file []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader := bytes.NewReader(file)
	pdfReader, err := pdf.NewReader(reader, int64(len(file)))
	if err != nil {
		return "", fmt.Errorf("pdf: open: %w", err)
	}

	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf: read text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("pdf: read text: %w", err)
	}
	return buf.String(), nil
}
