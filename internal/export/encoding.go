package export

import (
	"fmt"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Encoding names the tier that produced an export's bytes.
type Encoding string

const (
	// EncodingShiftJIS is the legacy double-byte encoding the target
	// accounting software requires.
	EncodingShiftJIS Encoding = "Shift_JIS"
	// EncodingUTF8BOM is the fallback: UTF-8 with a byte-order marker
	// so spreadsheet tools auto-detect it.
	EncodingUTF8BOM Encoding = "UTF-8 with BOM"
)

// utf8BOM is the byte-order marker prefixed in the fallback tier.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Encode converts the CSV text using the two-tier policy: Shift_JIS
// first, strictly (any unmappable rune fails the tier, no silent
// replacement characters in an accounting import), then UTF-8 with a
// BOM. The returned Encoding reports which tier succeeded.
func Encode(text string) ([]byte, Encoding, error) {
	if encoded, err := encodeShiftJIS(text); err == nil {
		return encoded, EncodingShiftJIS, nil
	}

	out := make([]byte, 0, len(utf8BOM)+len(text))
	out = append(out, utf8BOM...)
	out = append(out, text...)
	return out, EncodingUTF8BOM, nil
}

func encodeShiftJIS(text string) ([]byte, error) {
	encoded, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("shift_jis conversion: %w", err)
	}
	return encoded, nil
}
