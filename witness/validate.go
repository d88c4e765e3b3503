package witness

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrFormatViolation is matched by every *FormatViolation.
var ErrFormatViolation = errors.New("witness format violation")

// FormatViolation reports a forbidden character in a witness field.
type FormatViolation struct {
	Field  string
	Char   byte
	Offset int
}

func (e *FormatViolation) Error() string {
	return fmt.Sprintf("%s: field %s contains forbidden character %q at offset %d",
		ErrFormatViolation, e.Field, e.Char, e.Offset)
}

func (e *FormatViolation) Unwrap() error {
	return ErrFormatViolation
}

// Rule forbids a set of characters in one field.
type Rule struct {
	Field     string
	Forbidden []byte
}

// Rules lists the character restrictions in the order they are checked.
// Header fields may not contain line breaks, the name may not contain a
// comma, e-mail and body date may not contain a space and the DKIM tag values
// may not contain a semicolon.
var Rules = []Rule{
	{FieldCommentLine, []byte("\r\n")},
	{FieldName, []byte(",")},
	{FieldEmail, []byte(" ")},
	{FieldDateBody, []byte(" ")},
	{FieldDateHead, []byte("\r\n")},
	{FieldReceiver, []byte("\r\n")},
	{FieldMessageID, []byte("\r\n")},
	{FieldDKIMTimestamp, []byte(";")},
	{FieldBHBase64, []byte(";")},
	{FieldReceiptNumber, []byte("\r\n")},
}

// Validate returns a *FormatViolation for the first rule w breaks. Fields
// without a rule, including amount, are unrestricted.
func Validate(w *Witness) error {
	for _, r := range Rules {
		v, ok := w.Field(r.Field)
		if !ok {
			return fmt.Errorf("unknown witness field %q", r.Field)
		}
		if i := bytes.IndexAny(v, string(r.Forbidden)); i >= 0 {
			return &FormatViolation{Field: r.Field, Char: v[i], Offset: i}
		}
	}
	return nil
}
