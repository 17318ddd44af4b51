package documents

import "bytes"

// Known file signatures (magic bytes). Checked against the raw payload,
// independent of the caller-declared MIME type, so a renamed or mislabeled
// file is caught even when the declared type passes.
var fileSignatures = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeJPEG, []byte{0xFF, 0xD8, 0xFF}},
	{FileTypePNG, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{FileTypeWebP, []byte("RIFF")},
	{FileTypePDF, []byte("%PDF")},
}

// webpMarker must appear at offset 8: RIFF alone only proves some RIFF
// container, not WebP.
var webpMarker = []byte("WEBP")

const sniffLen = 12

// ValidFileBytes reports whether the payload starts with a known signature.
// Only the first 12 bytes are inspected; anything shorter than 4 bytes is
// rejected outright.
func ValidFileBytes(data []byte) bool {
	_, ok := SniffFileType(data)
	return ok
}

// SniffFileType identifies the true file type from the payload's leading
// bytes. The second return is false when no signature matches or the buffer
// is too short for the matching signature's required length.
func SniffFileType(data []byte) (FileType, bool) {
	if len(data) < 4 {
		return "", false
	}
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}

	for _, sig := range fileSignatures {
		if !bytes.HasPrefix(head, sig.magic) {
			continue
		}
		if sig.fileType == FileTypeWebP {
			if len(head) >= sniffLen && bytes.Equal(head[8:12], webpMarker) {
				return FileTypeWebP, true
			}
			continue
		}
		return sig.fileType, true
	}

	return "", false
}
