package vfs

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names the character encoding of a file on disk.
// Buffers always hold UTF-8; the encoding is remembered so that a save
// writes the file back the way it was read.
type Encoding string

const (
	// EncodingUTF8 is UTF-8 without a BOM (default).
	EncodingUTF8 Encoding = "utf-8"

	// EncodingUTF8BOM is UTF-8 with a leading BOM.
	EncodingUTF8BOM Encoding = "utf-8-bom"

	// EncodingUTF16LE is UTF-16 little endian with BOM.
	EncodingUTF16LE Encoding = "utf-16le"

	// EncodingUTF16BE is UTF-16 big endian with BOM.
	EncodingUTF16BE Encoding = "utf-16be"

	// EncodingLatin1 is ISO-8859-1, used for content that is not valid UTF-8.
	EncodingLatin1 Encoding = "iso-8859-1"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectEncoding detects the encoding of file content.
// BOM markers are checked first, then UTF-8 validity.
// Falls back to Latin-1 which accepts all byte sequences.
func DetectEncoding(content []byte) Encoding {
	switch {
	case bytes.HasPrefix(content, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(content, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(content, bomUTF16BE):
		return EncodingUTF16BE
	case utf8.Valid(content):
		return EncodingUTF8
	default:
		return EncodingLatin1
	}
}

// Decode converts raw file content to UTF-8 and reports the encoding it
// was stored in. Any BOM is removed.
func Decode(content []byte) ([]byte, Encoding, error) {
	enc := DetectEncoding(content)
	switch enc {
	case EncodingUTF8:
		return content, enc, nil
	case EncodingUTF8BOM:
		return content[len(bomUTF8):], enc, nil
	}

	out, err := codec(enc).NewDecoder().Bytes(content)
	if err != nil {
		return nil, enc, fmt.Errorf("decode %s: %w", enc, err)
	}
	return out, enc, nil
}

// Encode converts UTF-8 text to the given encoding, adding a BOM where the
// encoding calls for one.
func Encode(text string, enc Encoding) ([]byte, error) {
	switch enc {
	case "", EncodingUTF8:
		return []byte(text), nil
	case EncodingUTF8BOM:
		out := make([]byte, 0, len(bomUTF8)+len(text))
		out = append(out, bomUTF8...)
		return append(out, text...), nil
	case EncodingUTF16LE, EncodingUTF16BE, EncodingLatin1:
		out, err := codec(enc).NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", enc, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("encode: unsupported encoding %q", enc)
	}
}

// Unicode reports whether enc can represent every Unicode code point.
// Single-byte encodings such as Latin-1 cannot.
func (e Encoding) Unicode() bool {
	switch e {
	case "", EncodingUTF8, EncodingUTF8BOM, EncodingUTF16LE, EncodingUTF16BE:
		return true
	default:
		return false
	}
}

func codec(enc Encoding) encoding.Encoding {
	switch enc {
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case EncodingLatin1:
		return charmap.ISO8859_1
	default:
		return unicode.UTF8
	}
}

// IsBinary reports whether content looks like binary data rather than text.
// Uses heuristics: presence of null bytes, high ratio of control characters.
// Content with a UTF-16 BOM is text even though it contains null bytes.
func IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	if bytes.HasPrefix(content, bomUTF16LE) || bytes.HasPrefix(content, bomUTF16BE) {
		return false
	}

	// Check first 8KB at most
	sample := content[:min(len(content), 8192)]

	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	nonText := 0
	for _, b := range sample {
		if b < 32 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			nonText++
		}
	}

	// If more than 10% are non-text, consider it binary
	return float64(nonText)/float64(len(sample)) > 0.1
}
