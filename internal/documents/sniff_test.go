package documents

import "testing"

func TestSniffFileTypeJPEG(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46, 0x00, 0x01}
	ft, ok := SniffFileType(data)
	if !ok || ft != FileTypeJPEG {
		t.Fatalf("expected jpeg, got %q ok=%v", ft, ok)
	}
	if !ValidFileBytes(data) {
		t.Fatal("expected valid bytes")
	}
}

func TestSniffFileTypePNG(t *testing.T) {
	data := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}
	ft, ok := SniffFileType(data)
	if !ok || ft != FileTypePNG {
		t.Fatalf("expected png, got %q ok=%v", ft, ok)
	}
}

func TestSniffFileTypePDF(t *testing.T) {
	data := []byte("%PDF-1.7\n%\xe2\xe3")
	ft, ok := SniffFileType(data)
	if !ok || ft != FileTypePDF {
		t.Fatalf("expected pdf, got %q ok=%v", ft, ok)
	}
}

func TestSniffFileTypeWebP(t *testing.T) {
	data := []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
	ft, ok := SniffFileType(data)
	if !ok || ft != FileTypeWebP {
		t.Fatalf("expected webp, got %q ok=%v", ft, ok)
	}
}

func TestSniffRejectsRIFFWithoutWebPMarker(t *testing.T) {
	// RIFF container that is not WebP, e.g. a WAV file.
	data := []byte("RIFF\x24\x00\x00\x00WAVEfmt ")
	if _, ok := SniffFileType(data); ok {
		t.Fatal("expected RIFF without WEBP marker to be rejected")
	}
	if ValidFileBytes(data) {
		t.Fatal("expected invalid bytes")
	}
}

func TestSniffRejectsShortPayload(t *testing.T) {
	if ValidFileBytes([]byte{0xFF, 0xD8, 0xFF}) {
		t.Fatal("expected payload under 4 bytes to be rejected")
	}
	if ValidFileBytes(nil) {
		t.Fatal("expected empty payload to be rejected")
	}
}

func TestSniffRejectsUnknownSignature(t *testing.T) {
	if ValidFileBytes([]byte("GIF89a but unsupported")) {
		t.Fatal("expected unsupported signature to be rejected")
	}
}

func TestSniffOnlyInspectsPrefix(t *testing.T) {
	// Garbage after the signature must not matter.
	data := append([]byte{0xFF, 0xD8, 0xFF}, make([]byte, 1024)...)
	ft, ok := SniffFileType(data)
	if !ok || ft != FileTypeJPEG {
		t.Fatalf("expected jpeg, got %q ok=%v", ft, ok)
	}
}
