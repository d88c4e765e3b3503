package journal

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fxamacker/cbor/v2"
)

// ReceiptVersion is the current receipt format.
const ReceiptVersion = 1

// Receipt is the externally visible result of one verification. It carries
// no failure reason.
type Receipt struct {
	Version  uint              `cbor:"1,keyasint"`
	Journal  [][]byte          `cbor:"2,keyasint"`
	Verified bool              `cbor:"3,keyasint"`
	Strategy string            `cbor:"4,keyasint,omitempty"`
	Cycles   map[string]uint64 `cbor:"5,keyasint,omitempty"`
}

// NewReceipt snapshots j and ledger. ledger may be nil.
func NewReceipt(j *Journal, ledger *CycleLedger, verified bool, strategy string) *Receipt {
	r := &Receipt{
		Version:  ReceiptVersion,
		Journal:  j.Entries(),
		Verified: verified,
		Strategy: strategy,
	}
	if ledger != nil {
		r.Cycles = ledger.Snapshot()
	}
	return r
}

var encMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("journal: cbor encoder: %v", err))
	}
	return em
}()

// Encode returns r as canonical CBOR.
func (r *Receipt) Encode() ([]byte, error) {
	data, err := encMode.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode receipt: %w", err)
	}
	return data, nil
}

// DecodeReceipt parses a CBOR receipt.
func DecodeReceipt(data []byte) (*Receipt, error) {
	var r Receipt
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode receipt: %w", err)
	}
	if r.Version != ReceiptVersion {
		return nil, fmt.Errorf("unsupported receipt version %d", r.Version)
	}
	return &r, nil
}

type receiptJSON struct {
	Version  uint              `json:"version"`
	Journal  []hexutil.Bytes   `json:"journal"`
	Text     []string          `json:"journalText"`
	Verified bool              `json:"verified"`
	Strategy string            `json:"strategy,omitempty"`
	Cycles   map[string]uint64 `json:"cycles,omitempty"`
}

// MarshalJSON renders journal entries as 0x-hex and as text.
func (r *Receipt) MarshalJSON() ([]byte, error) {
	out := receiptJSON{
		Version:  r.Version,
		Journal:  make([]hexutil.Bytes, len(r.Journal)),
		Text:     make([]string, len(r.Journal)),
		Verified: r.Verified,
		Strategy: r.Strategy,
		Cycles:   r.Cycles,
	}
	for i, e := range r.Journal {
		out.Journal[i] = e
		out.Text[i] = string(e)
	}
	return json.Marshal(out)
}
