// Package testdata provides embedded test fixtures for use across all test packages.
package testdata

import _ "embed"

// WitnessJSON is a real SC Pay receipt witness (HKD 10.00, 18 Nov 2023) with
// its sc.com DKIM signature as a decimal integer
//
//go:embed witness.json
var WitnessJSON []byte

// WitnessBorsh is WitnessJSON in Borsh form with a big-endian signature
//
//go:embed witness.bin
var WitnessBorsh []byte

// WitnessBase64 is WitnessBorsh base64-encoded
//
//go:embed witness.b64
var WitnessBase64 []byte

// Expected digests of the WitnessJSON message.
const (
	BodyHashHex = "849ffe50d91fd411ce50c69886bcc3cc3dda76b6ae8c598a8d96a335638b613e"
	DataHashHex = "90f25972d8b7b0e1f14dbbef33c2e01ea567bbb53ec0a367f399c54a24be6f78"
)
