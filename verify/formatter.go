package verify

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/weikengchen/fps-r0/dkim"
)

// Formatter formats verification data for display
type Formatter struct{}

// NewFormatter creates a new formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatVerificationResult converts a result into a JSON-friendly map
func (f *Formatter) FormatVerificationResult(r *VerifyResult) map[string]interface{} {
	return map[string]interface{}{
		"valid":             r.Valid,
		"amount":            r.Amount,
		"email":             r.Email,
		"strategy":          string(r.Strategy),
		"signatureEncoding": string(r.Encoding),
		"bodyLength":        r.BodyLength,
		"headerLength":      r.HeaderLength,
		"bodyHash":          hexutil.Encode(r.BodyHash[:]),
		"dataHash":          hexutil.Encode(r.DataHash[:]),
		"domain":            dkim.Domain,
		"selector":          dkim.Selector,
	}
}

// FormatMessage renders the reconstructed streams with visible line endings
func (f *Formatter) FormatMessage(msg *dkim.Message) string {
	var sb strings.Builder

	section := func(title string, data []byte) {
		sb.WriteString(fmt.Sprintf("--- %s (%d bytes) ---\n", title, len(data)))
		sb.WriteString(strings.ReplaceAll(string(data), "\r\n", "\\r\\n\n"))
		if len(data) > 0 && !bytes.HasSuffix(data, []byte("\r\n")) {
			sb.WriteString("\n")
		}
	}

	section("body", msg.Body)
	section("header", msg.Header)
	section("dkim-signature prefix", msg.SignedHeaderPrefix)

	return sb.String()
}

// FormatPaddedBlock prints a block as 32-byte hex rows. Consecutive rows of
// 0xff padding are collapsed into a range.
func (f *Formatter) FormatPaddedBlock(block []byte, indent string) string {
	const rowLen = 32
	var sb strings.Builder

	isPadding := func(row []byte) bool {
		for _, b := range row {
			if b != 0xff {
				return false
			}
		}
		return len(row) == rowLen
	}

	var rows [][]byte
	for off := 0; off < len(block); off += rowLen {
		rows = append(rows, block[off:min(off+rowLen, len(block))])
	}

	for i := 0; i < len(rows); i++ {
		if !isPadding(rows[i]) {
			sb.WriteString(fmt.Sprintf("%s[%3d] %s\n", indent, i*rowLen, hex.EncodeToString(rows[i])))
			continue
		}
		start := i
		for i+1 < len(rows) && isPadding(rows[i+1]) {
			i++
		}
		if start == i {
			sb.WriteString(fmt.Sprintf("%s[%3d] ff... (padding)\n", indent, start*rowLen))
		} else {
			sb.WriteString(fmt.Sprintf("%s[%3d-%3d] ff... (padding)\n", indent, start*rowLen, (i+1)*rowLen-1))
		}
	}

	return sb.String()
}
