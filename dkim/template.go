// Package dkim rebuilds the canonical DKIM-signed byte streams of an SC Pay
// receipt e-mail and derives the digests covered by its RSA signature.
//
// The message is fixed except for the witness fields. Reconstruct produces
// three byte strings:
//   - Body: the relaxed-canonical MIME body, whose SHA-256 must equal the
//     bh= tag of the DKIM-Signature header
//   - Header: the seven signed headers in relaxed canonical form
//   - SignedHeaderPrefix: the DKIM-Signature header itself, up to and
//     including "b="
//
// The data hash is SHA-256(Header || SignedHeaderPrefix) and the value the
// signature must open to is the 255-byte EMSA-PKCS1-v1_5 block built by
// BuildPaddedDigest.
//
//	msg := dkim.Reconstruct(w)
//	digests := dkim.ComputeDigests(msg)
//	if err := dkim.CheckBodyHash(w.BHBase64, digests.BodyHash); err != nil {
//		return err
//	}
//	block := dkim.BuildPaddedDigest(digests.DataHash)
package dkim

const crlf = "\r\n"

// Body template.
const (
	boundaryPrefix = "------=_Part_"

	bodyPartHeaders = crlf +
		"Content-Type: text/plain; charset=\"UTF-8\"" + crlf +
		"Content-Transfer-Encoding: quoted-printable" + crlf +
		crlf +
		"Dear Valued Client," + crlf +
		crlf +
		"Thank you for using Standard Chartered Pay(\"SC Pay\") service." + crlf +
		crlf

	paymentPrefix   = "Your payment to send HKD "
	paymentTo       = " to "
	paymentSep      = ", "
	paymentVia      = " via SC Pay has been transferred on "
	paymentComplete = " successfully."

	bodyDisclaimer = crlf +
		crlf +
		"If you didn=E2=80=99t make this payment, please contact our Customer Servi=" + crlf +
		"ce Hotline at (852) 2886 8868 immediately." + crlf +
		crlf +
		"Yours sincerely," + crlf +
		"Standard Chartered Bank (Hong Kong) Limited" + crlf +
		crlf +
		"This email and any attachments are confidential and may also be privileged=" + crlf +
		". If you are not the intended recipient, please delete all copies and noti=" + crlf +
		"fy the sender immediately. You may wish to refer to the incorporation deta=" + crlf +
		"ils of Standard Chartered PLC, Standard Chartered Bank and their subsidiar=" + crlf +
		"ies together with Standard Chartered Bank=E2=80=99s Privacy Policy via our=" + crlf +
		" public website." + crlf

	closingSuffix = "--" + crlf
)

// Header template, relaxed canonical form.
const (
	headerDate      = "date:"
	headerFrom      = crlf + "from:Standard Chartered Alerts <OnlineBanking.HK@sc.com>" + crlf + "to:"
	headerMessageID = crlf + "message-id:"
	headerSubject   = crlf + "subject:=?UTF-8?Q?Send_Money_via_Standard_Chartered_?= =?UTF-8?Q?Pay_=E2=80=93_Receipt_No._"
	headerMIME      = "?=" + crlf + "mime-version:1.0" + crlf +
		"content-type:multipart/mixed; boundary=\"----=_Part_"
	headerEnd = "\"" + crlf
)

// DKIM-Signature template for selector k06k22gbledmsml of sc.com.
const (
	signaturePrefix = "dkim-signature:v=1; a=rsa-sha256; c=relaxed/relaxed; d=sc.com; s=k06k22gbledmsml; t="
	signatureBH     = "; i=@sc.com; bh="
	signatureB      = "; h=Date:From:To:Message-ID:Subject:MIME-Version:Content-Type; b="
)

const (
	// Domain and Selector identify the signing key.
	Domain   = "sc.com"
	Selector = "k06k22gbledmsml"
)

// SoftWrapWidth is the number of payload bytes per quoted-printable line
// before the "=" soft break.
const SoftWrapWidth = 74

const softBreak = "=" + crlf
