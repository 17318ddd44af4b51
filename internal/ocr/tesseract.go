package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract runs recognition through the gosseract client. A fresh client is
// created per call; gosseract clients are not safe for concurrent reuse.
type Tesseract struct {
	clientFactory func() *gosseract.Client
}

// NewTesseract constructs a Tesseract-backed engine.
func NewTesseract() *Tesseract {
	return &Tesseract{clientFactory: gosseract.NewClient}
}

// Recognize performs OCR on a single raster image.
func (t *Tesseract) Recognize(ctx context.Context, file []byte, languages []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := t.clientFactory()
	defer client.Close()

	if err := client.SetImageFromBytes(file); err != nil {
		return "", fmt.Errorf("tesseract: set image: %w", err)
	}
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			return "", fmt.Errorf("tesseract: set languages: %w", err)
		}
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: recognize: %w", err)
	}
	return strings.TrimSpace(text), nil
}

var _ Engine = (*Tesseract)(nil)
