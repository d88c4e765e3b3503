package dkim

import "crypto/sha256"

var digestInfoPrefix = [19]byte{
	0x30, 0x31, 0x30, 0x0d, 0x06, 0x09, 0x60, 0x86, 0x48, 0x01,
	0x65, 0x03, 0x04, 0x02, 0x01, 0x05, 0x00, 0x04, 0x20,
}

// DigestInfoPrefix returns the DER encoding of the SHA-256 DigestInfo up to
// the digest octets.
func DigestInfoPrefix() [19]byte {
	return digestInfoPrefix
}

// PaddedBlockSize is the RSA block size minus the leading zero byte.
const PaddedBlockSize = 255

// PaddedBlock is an EMSA-PKCS1-v1_5 block without its leading 0x00.
type PaddedBlock [PaddedBlockSize]byte

const padLen = PaddedBlockSize - 1 - 1 - len(digestInfoPrefix) - sha256.Size

// BuildPaddedDigest returns 0x01 || 0xFF*202 || 0x00 || DigestInfoPrefix ||
// dataHash.
func BuildPaddedDigest(dataHash [sha256.Size]byte) PaddedBlock {
	var block PaddedBlock
	block[0] = 0x01
	for i := 1; i <= padLen; i++ {
		block[i] = 0xff
	}
	block[padLen+1] = 0x00
	copy(block[padLen+2:], digestInfoPrefix[:])
	copy(block[padLen+2+len(digestInfoPrefix):], dataHash[:])
	return block
}
