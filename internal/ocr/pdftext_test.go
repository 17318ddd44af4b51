package ocr

import (
	"context"
	"testing"
)

func TestRecognizePDFTextRejectsGarbage(t *testing.T) {
	if _, err := RecognizePDFText(context.Background(), []byte("%PDF-1.4 truncated")); err == nil {
		t.Fatal("expected error for truncated pdf")
	}
}

func TestRecognizePDFTextHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RecognizePDFText(ctx, []byte("%PDF-1.4")); err == nil {
		t.Fatal("expected context error")
	}
}
