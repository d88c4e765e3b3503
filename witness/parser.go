package witness

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/near/borsh-go"
)

// Decode deserializes a Borsh-encoded witness.
func Decode(data []byte) (*Witness, error) {
	var w Witness
	if err := borsh.Deserialize(&w, data); err != nil {
		return nil, fmt.Errorf("failed to deserialize witness: %w", err)
	}
	return &w, nil
}

// Encode serializes w with Borsh.
func Encode(w *Witness) ([]byte, error) {
	data, err := borsh.Serialize(*w)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize witness: %w", err)
	}
	return data, nil
}

// DecodeFromBase64 decodes a base64-encoded Borsh witness.
func DecodeFromBase64(witnessB64 string) (*Witness, error) {
	data, err := base64.StdEncoding.DecodeString(witnessB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return Decode(data)
}

// DecodeFromFile decodes a Borsh witness from a binary file.
func DecodeFromFile(filePath string) (*Witness, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Decode(data)
}

func decodeBase64File(filePath string) (*Witness, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return DecodeFromBase64(strings.TrimSpace(string(data)))
}

// jsonWitness is the human-editable witness layout.
type jsonWitness struct {
	CommentLine   string `json:"comment_line"`
	Amount        string `json:"amount"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	DateBody      string `json:"date_body"`
	DateHead      string `json:"date_head"`
	Receiver      string `json:"receiver"`
	MessageID     string `json:"message_id"`
	DKIMTimestamp string `json:"dkim_timestamp"`
	BHBase64      string `json:"bh_base64"`
	ReceiptNumber string `json:"receipt_number"`
	// Signature is a decimal integer.
	Signature string `json:"signature,omitempty"`
	// SignatureHex is 0x-prefixed big-endian hex.
	SignatureHex hexutil.Bytes `json:"signature_hex,omitempty"`
}

// DecodeJSON parses a JSON witness. The signature is returned in big-endian
// form.
func DecodeJSON(data []byte) (*Witness, error) {
	var jw jsonWitness
	if err := json.Unmarshal(data, &jw); err != nil {
		return nil, fmt.Errorf("failed to parse witness JSON: %w", err)
	}

	sig, err := jw.signature()
	if err != nil {
		return nil, err
	}

	return &Witness{
		CommentLine:   []byte(jw.CommentLine),
		Amount:        []byte(jw.Amount),
		Name:          []byte(jw.Name),
		Email:         []byte(jw.Email),
		DateBody:      []byte(jw.DateBody),
		DateHead:      []byte(jw.DateHead),
		Receiver:      []byte(jw.Receiver),
		MessageID:     []byte(jw.MessageID),
		DKIMTimestamp: []byte(jw.DKIMTimestamp),
		BHBase64:      []byte(jw.BHBase64),
		ReceiptNumber: []byte(jw.ReceiptNumber),
		Signature:     sig,
	}, nil
}

func (jw *jsonWitness) signature() ([]byte, error) {
	switch {
	case jw.Signature != "" && len(jw.SignatureHex) > 0:
		return nil, errors.New("witness JSON sets both signature and signature_hex")
	case jw.Signature != "":
		return SignatureFromDecimal(jw.Signature)
	case len(jw.SignatureHex) > 0:
		return []byte(jw.SignatureHex), nil
	default:
		return nil, errors.New("witness JSON has no signature")
	}
}

// DecodeJSONFromFile parses a JSON witness file.
func DecodeJSONFromFile(filePath string) (*Witness, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return DecodeJSON(data)
}

// EncodeJSON renders w as indented JSON with the signature as a decimal
// integer. The signature is read as big-endian.
func EncodeJSON(w *Witness) ([]byte, error) {
	jw := jsonWitness{
		CommentLine:   string(w.CommentLine),
		Amount:        string(w.Amount),
		Name:          string(w.Name),
		Email:         string(w.Email),
		DateBody:      string(w.DateBody),
		DateHead:      string(w.DateHead),
		Receiver:      string(w.Receiver),
		MessageID:     string(w.MessageID),
		DKIMTimestamp: string(w.DKIMTimestamp),
		BHBase64:      string(w.BHBase64),
		ReceiptNumber: string(w.ReceiptNumber),
		Signature:     new(big.Int).SetBytes(w.Signature).String(),
	}
	return json.MarshalIndent(jw, "", "  ")
}

// SignatureFromDecimal converts a decimal integer to minimal big-endian bytes.
func SignatureFromDecimal(s string) ([]byte, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid decimal signature %q", truncate(s, 16))
	}
	if v.Sign() < 0 {
		return nil, errors.New("signature must be non-negative")
	}
	return v.Bytes(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
