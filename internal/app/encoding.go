package app

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeFileContent normalizes file bytes to UTF-8. UTF-16 files (with a
// BOM) are transcoded; a UTF-8 BOM is stripped; everything else passes
// through untouched.
func decodeFileContent(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}):
		return raw[3:], nil
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return transcodeUTF16(raw, unicode.LittleEndian)
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return transcodeUTF16(raw, unicode.BigEndian)
	default:
		return raw, nil
	}
}

func transcodeUTF16(raw []byte, endianness unicode.Endianness) ([]byte, error) {
	decoder := unicode.UTF16(endianness, unicode.UseBOM).NewDecoder()
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return nil, err
	}
	return out, nil
}
