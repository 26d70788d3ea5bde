package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var (
	errInvalidUTF8 = errors.New("value is not valid UTF-8")
	errEmpty       = errors.New("value is empty")
)

// PDF text strings carry a UTF-16BE byte order mark when they are not
// PDFDocEncoded
var utf16BOM = []byte{0xFE, 0xFF}

// decodeText turns a raw property value into text.
func decodeText(value any) (string, error) {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}

	if bytes.HasPrefix(raw, utf16BOM) {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("failed to decode UTF-16 value: %w", err)
		}
		return string(out), nil
	}

	if !utf8.Valid(raw) {
		return "", errInvalidUTF8
	}
	return string(raw), nil
}

// decoded and trimmed; errEmpty when nothing is left
func decodeTrimmed(value any) (string, error) {
	text, err := decodeText(value)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmpty
	}
	return text, nil
}

// splits on sep and trims every part; empty parts are kept
func splitTrimmed(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
