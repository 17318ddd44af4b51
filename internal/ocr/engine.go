// Package ocr defines the recognition engine contract and the engines the
// server ships with. The engine turns uploaded file bytes into raw text;
// everything downstream of that (field extraction, persistence) lives
// elsewhere.
package ocr

import (
	"bytes"
	"context"
)

// Engine recognizes text in an uploaded file. Implementations may take
// arbitrarily long; callers decide how to schedule the call.
type Engine interface {
	Recognize(ctx context.Context, file []byte, languages []string) (string, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, file []byte, languages []string) (string, error)

func (f EngineFunc) Recognize(ctx context.Context, file []byte, languages []string) (string, error) {
	return f(ctx, file, languages)
}

var pdfMagic = []byte("%PDF")

// New returns the production engine: PDFs are read through their text layer,
// raster images go through Tesseract.
func New() Engine {
	tess := NewTesseract()
	return EngineFunc(func(ctx context.Context, file []byte, languages []string) (string, error) {
		if bytes.HasPrefix(file, pdfMagic) {
			return RecognizePDFText(ctx, file)
		}
		return tess.Recognize(ctx, file, languages)
	})
}
