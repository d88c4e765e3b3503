package dkim

import (
	"bytes"

	"github.com/weikengchen/fps-r0/witness"
)

// Message holds the reconstructed byte streams covered by the DKIM
// signature.
type Message struct {
	Body               []byte
	Header             []byte
	SignedHeaderPrefix []byte
}

// Reconstruct rebuilds the canonical message for w. The output depends only
// on w.
func Reconstruct(w *witness.Witness) *Message {
	return &Message{
		Body:               Body(w),
		Header:             Header(w),
		SignedHeaderPrefix: SignedHeaderPrefix(w),
	}
}

// PaymentParagraph returns the unwrapped sentence describing the payment.
func PaymentParagraph(w *witness.Witness) []byte {
	var b bytes.Buffer
	b.WriteString(paymentPrefix)
	b.Write(w.Amount)
	b.WriteString(paymentTo)
	b.Write(w.Name)
	b.WriteString(paymentSep)
	b.Write(w.Email)
	b.WriteString(paymentVia)
	b.Write(w.DateBody)
	b.WriteString(paymentComplete)
	return b.Bytes()
}

// SoftWrap inserts a quoted-printable soft line break after every
// SoftWrapWidth bytes while more than SoftWrapWidth bytes remain. The rest is
// emitted unsplit. An input of length L gets floor((L-1)/SoftWrapWidth)
// breaks.
func SoftWrap(p []byte) []byte {
	out := make([]byte, 0, len(p)+len(p)/SoftWrapWidth*len(softBreak))
	for len(p) > SoftWrapWidth {
		out = append(out, p[:SoftWrapWidth]...)
		out = append(out, softBreak...)
		p = p[SoftWrapWidth:]
	}
	return append(out, p...)
}

// Body returns the relaxed-canonical message body.
func Body(w *witness.Witness) []byte {
	var b bytes.Buffer
	b.WriteString(boundaryPrefix)
	b.Write(w.CommentLine)
	b.WriteString(bodyPartHeaders)
	b.Write(SoftWrap(PaymentParagraph(w)))
	b.WriteString(bodyDisclaimer)
	b.WriteString(boundaryPrefix)
	b.Write(w.CommentLine)
	b.WriteString(closingSuffix)
	return b.Bytes()
}

// Header returns the signed headers in relaxed canonical form.
func Header(w *witness.Witness) []byte {
	var b bytes.Buffer
	b.WriteString(headerDate)
	b.Write(w.DateHead)
	b.WriteString(headerFrom)
	b.Write(w.Receiver)
	b.WriteString(headerMessageID)
	b.Write(w.MessageID)
	b.WriteString(headerSubject)
	b.Write(w.ReceiptNumber)
	b.WriteString(headerMIME)
	b.Write(w.CommentLine)
	b.WriteString(headerEnd)
	return b.Bytes()
}

// SignedHeaderPrefix returns the DKIM-Signature header up to "b=".
func SignedHeaderPrefix(w *witness.Witness) []byte {
	var b bytes.Buffer
	b.WriteString(signaturePrefix)
	b.Write(w.DKIMTimestamp)
	b.WriteString(signatureBH)
	b.Write(w.BHBase64)
	b.WriteString(signatureB)
	return b.Bytes()
}
