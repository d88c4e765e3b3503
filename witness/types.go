// Package witness defines the private input of a payment-notification
// verification and the rules its fields must satisfy.
//
// A Witness carries the variable fields of one Standard Chartered "SC Pay"
// receipt e-mail together with the RSA signature from its DKIM-Signature
// header. Every other byte of the message is fixed and rebuilt by package
// dkim.
//
// # Encodings
//
// Witnesses are stored in one of two formats:
//   - Borsh: twelve u32-length-prefixed byte vectors in field order, the
//     compact binary interchange format of this module
//   - JSON: one string per field with the signature as a decimal integer
//     ("signature") or 0x-prefixed big-endian hex ("signature_hex")
//
// Load either with a FileReader:
//
//	reader := &witness.FileReader{Path: "witness.json"}
//	w, err := reader.Read(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Validation
//
// Validate enforces the field character rules that keep the reconstructed
// message unambiguous. A violation is reported as a *FormatViolation.
package witness

// Witness is the private input of one verification. Field order matches the
// Borsh layout.
type Witness struct {
	CommentLine   []byte `borsh:"comment_line"`
	Amount        []byte `borsh:"amount"`
	Name          []byte `borsh:"name"`
	Email         []byte `borsh:"email"`
	DateBody      []byte `borsh:"date_body"`
	DateHead      []byte `borsh:"date_head"`
	Receiver      []byte `borsh:"receiver"`
	MessageID     []byte `borsh:"message_id"`
	DKIMTimestamp []byte `borsh:"dkim_timestamp"`
	BHBase64      []byte `borsh:"bh_base64"`
	ReceiptNumber []byte `borsh:"receipt_number"`
	// Signature is big-endian or Montgomery little-endian depending on how
	// the verifier is configured.
	Signature []byte `borsh:"signature"`
}

// Field names as they appear in error messages and JSON files.
const (
	FieldCommentLine   = "comment_line"
	FieldAmount        = "amount"
	FieldName          = "name"
	FieldEmail         = "email"
	FieldDateBody      = "date_body"
	FieldDateHead      = "date_head"
	FieldReceiver      = "receiver"
	FieldMessageID     = "message_id"
	FieldDKIMTimestamp = "dkim_timestamp"
	FieldBHBase64      = "bh_base64"
	FieldReceiptNumber = "receipt_number"
	FieldSignature     = "signature"
)

// Clone returns a deep copy of w.
func (w *Witness) Clone() *Witness {
	c := &Witness{}
	for i, f := range w.fields() {
		*c.fields()[i].value = append([]byte(nil), (*f.value)...)
	}
	return c
}

type namedField struct {
	name  string
	value *[]byte
}

func (w *Witness) fields() []namedField {
	return []namedField{
		{FieldCommentLine, &w.CommentLine},
		{FieldAmount, &w.Amount},
		{FieldName, &w.Name},
		{FieldEmail, &w.Email},
		{FieldDateBody, &w.DateBody},
		{FieldDateHead, &w.DateHead},
		{FieldReceiver, &w.Receiver},
		{FieldMessageID, &w.MessageID},
		{FieldDKIMTimestamp, &w.DKIMTimestamp},
		{FieldBHBase64, &w.BHBase64},
		{FieldReceiptNumber, &w.ReceiptNumber},
		{FieldSignature, &w.Signature},
	}
}

// Field returns the value of the named field.
func (w *Witness) Field(name string) ([]byte, bool) {
	for _, f := range w.fields() {
		if f.name == name {
			return *f.value, true
		}
	}
	return nil, false
}

// SetField replaces the value of the named field.
func (w *Witness) SetField(name string, v []byte) bool {
	for _, f := range w.fields() {
		if f.name == name {
			*f.value = v
			return true
		}
	}
	return false
}
