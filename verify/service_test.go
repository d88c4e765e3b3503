package verify

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weikengchen/fps-r0/bigint"
	"github.com/weikengchen/fps-r0/dkim"
	"github.com/weikengchen/fps-r0/journal"
	"github.com/weikengchen/fps-r0/testdata"
	"github.com/weikengchen/fps-r0/witness"
)

func sampleWitness(t *testing.T) *witness.Witness {
	t.Helper()
	w, err := witness.DecodeJSON(testdata.WitnessJSON)
	require.NoError(t, err)
	return w
}

func montgomeryWitness(t *testing.T) *witness.Witness {
	t.Helper()
	w := sampleWitness(t)
	mul, err := bigint.NewMultiplier(bigint.DefaultContext(), bigint.LimbSerial)
	require.NoError(t, err)
	w.Signature, err = EncodeMontgomerySignature(mul, w.Signature)
	require.NoError(t, err)
	return w
}

func newService(t *testing.T, cfg Config, opts ...Option) (*Service, *journal.Journal) {
	t.Helper()
	j := &journal.Journal{}
	svc, err := NewService(j, cfg, opts...)
	require.NoError(t, err)
	return svc, j
}

func TestNewService(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc, _ := newService(t, Config{})
		require.NotNil(t, svc)
		assert.Equal(t, bigint.LimbSerial, svc.Strategy())
		assert.Equal(t, EncodingBigEndian, svc.encoding)
		assert.Same(t, bigint.DefaultContext(), svc.ctx)
	})

	t.Run("nil committer", func(t *testing.T) {
		_, err := NewService(nil, Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "committer is required")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, err := NewService(&journal.Journal{}, Config{Strategy: "fft"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create multiplier")
	})

	t.Run("unknown encoding", func(t *testing.T) {
		_, err := NewService(&journal.Journal{}, Config{Encoding: "hex"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown signature encoding")
	})
}

func TestVerifySample(t *testing.T) {
	cases := []struct {
		encoding SignatureEncoding
		witness  func(t *testing.T) *witness.Witness
		products uint64
	}{
		// to-Montgomery + 16 squarings + 1 multiply + from-Montgomery
		{EncodingBigEndian, sampleWitness, 19},
		{EncodingMontgomery, montgomeryWitness, 18},
	}

	for _, strategy := range bigint.Strategies() {
		for _, tc := range cases {
			t.Run(string(strategy)+"/"+string(tc.encoding), func(t *testing.T) {
				ledger := &journal.CycleLedger{}
				svc, j := newService(t, Config{Strategy: strategy, Encoding: tc.encoding}, WithMeter(ledger))

				result, err := svc.Verify(tc.witness(t))
				require.NoError(t, err)
				require.NotNil(t, result)

				assert.True(t, result.Valid)
				assert.Equal(t, "10.00", result.Amount)
				assert.Equal(t, "w********@chenweikeng.com", result.Email)
				assert.Equal(t, strategy, result.Strategy)
				assert.Equal(t, tc.encoding, result.Encoding)
				assert.Equal(t, len(result.Message.Body), result.BodyLength)
				assert.Equal(t, byte(0x01), result.Expected[0])

				assert.Equal(t, [][]byte{[]byte("10.00"), []byte("w********@chenweikeng.com")}, j.Entries())
				assert.Equal(t, tc.products, ledger.Count(bigint.OpMontMul))
			})
		}
	}
}

func TestVerifyRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *witness.Witness)
		reason Reason
		cause  error
	}{
		{
			name:   "comma in name",
			mutate: func(w *witness.Witness) { w.Name = []byte("CHEN, W") },
			reason: ReasonFormatViolation,
			cause:  witness.ErrFormatViolation,
		},
		{
			name:   "line break in receiver",
			mutate: func(w *witness.Witness) { w.Receiver = append(w.Receiver, '\n') },
			reason: ReasonFormatViolation,
			cause:  witness.ErrFormatViolation,
		},
		{
			name:   "bh not base64",
			mutate: func(w *witness.Witness) { w.BHBase64 = []byte("!!!!") },
			reason: ReasonMalformedEncoding,
			cause:  dkim.ErrMalformedEncoding,
		},
		{
			name:   "bh wrong length",
			mutate: func(w *witness.Witness) { w.BHBase64 = []byte("aGVsbG8=") },
			reason: ReasonMalformedEncoding,
			cause:  dkim.ErrMalformedEncoding,
		},
		{
			name: "bh with line break",
			mutate: func(w *witness.Witness) {
				w.BHBase64 = append(append(append([]byte{}, w.BHBase64[:32]...), "\r\n"...), w.BHBase64[32:]...)
			},
			reason: ReasonMalformedEncoding,
			cause:  dkim.ErrMalformedEncoding,
		},
		{
			name:   "bh non-canonical trailing bits",
			mutate: func(w *witness.Witness) { w.BHBase64 = []byte("hJ/+UNkf1BHOUMaYhrzDzD3adraujFmKjZajNWOLYT5=") },
			reason: ReasonMalformedEncoding,
			cause:  dkim.ErrMalformedEncoding,
		},
		{
			name:   "amount changed",
			mutate: func(w *witness.Witness) { w.Amount = []byte("1000.00") },
			reason: ReasonDigestInconsistency,
			cause:  dkim.ErrDigestInconsistency,
		},
		{
			name:   "header date changed",
			mutate: func(w *witness.Witness) { w.DateHead = []byte("Sun, 19 Nov 2023 20:22:20 +0800") },
			reason: ReasonPaddingMismatch,
			cause:  ErrPaddingMismatch,
		},
		{
			name:   "receipt number changed",
			mutate: func(w *witness.Witness) { w.ReceiptNumber = []byte("2311-182022218701") },
			reason: ReasonPaddingMismatch,
			cause:  ErrPaddingMismatch,
		},
		{
			name: "signature equal to modulus",
			mutate: func(w *witness.Witness) {
				w.Signature = bigint.DefaultContext().Modulus().Bytes()
			},
			reason: ReasonMalformedEncoding,
			cause:  ErrSignatureRange,
		},
		{
			name:   "signature too long",
			mutate: func(w *witness.Witness) { w.Signature = append([]byte{0x01}, w.Signature...) },
			reason: ReasonMalformedEncoding,
			cause:  bigint.ErrOutOfRange,
		},
		{
			name:   "signature zero",
			mutate: func(w *witness.Witness) { w.Signature = nil },
			reason: ReasonPaddingMismatch,
			cause:  ErrPaddingMismatch,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, j := newService(t, Config{Strategy: bigint.BlockAccelerated})
			w := sampleWitness(t)
			tc.mutate(w)

			result, err := svc.Verify(w)
			require.Error(t, err)
			assert.Nil(t, result)

			reason, ok := ReasonOf(err)
			require.True(t, ok)
			assert.Equal(t, tc.reason, reason)
			assert.ErrorIs(t, err, ErrRejected)
			assert.ErrorIs(t, err, tc.cause)

			// Outputs are committed before any check.
			entries := j.Entries()
			require.Len(t, entries, 2)
			assert.Equal(t, w.Amount, entries[0])
			assert.Equal(t, w.Email, entries[1])
		})
	}
}

func TestVerifySignatureBitFlips(t *testing.T) {
	svc, _ := newService(t, Config{Strategy: bigint.LimbSerial})

	for _, bit := range []int{0, 1, 31, 32, 255, 256, 1024, 2000, 2046} {
		w := sampleWitness(t)
		v := new(big.Int).SetBytes(w.Signature)
		v.SetBit(v, bit, v.Bit(bit)^1)
		w.Signature = v.Bytes()

		_, err := svc.Verify(w)
		require.Error(t, err, "bit %d", bit)
		reason, _ := ReasonOf(err)
		assert.Equal(t, ReasonPaddingMismatch, reason, "bit %d", bit)
	}
}

func TestVerifyMontgomeryOutOfRange(t *testing.T) {
	svc, _ := newService(t, Config{Encoding: EncodingMontgomery})
	w := sampleWitness(t)
	n := bigint.DefaultContext().N
	w.Signature = n.LimbBytesLE()

	_, err := svc.Verify(w)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSignatureRange)
}

func TestVerifyLogsRejection(t *testing.T) {
	var buf bytes.Buffer
	svc, _ := newService(t, Config{}, WithLogger(zerolog.New(&buf)))
	w := sampleWitness(t)
	w.Email = []byte("a b@c")

	_, err := svc.Verify(w)
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"reason":"format_violation"`)
	assert.Contains(t, buf.String(), "verification rejected")
}

func TestRejection(t *testing.T) {
	err := &Rejection{Reason: ReasonPaddingMismatch, Err: ErrPaddingMismatch}
	assert.Equal(t, "verification rejected (padding_mismatch): recovered block does not match padded digest", err.Error())

	_, ok := ReasonOf(errors.New("other"))
	assert.False(t, ok)
}

func TestParseSignatureEncoding(t *testing.T) {
	enc, err := ParseSignatureEncoding("Montgomery")
	require.NoError(t, err)
	assert.Equal(t, EncodingMontgomery, enc)

	enc, err = ParseSignatureEncoding("")
	require.NoError(t, err)
	assert.Equal(t, EncodingBigEndian, enc)

	_, err = ParseSignatureEncoding("base58")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown signature encoding")
}

func BenchmarkVerify(b *testing.B) {
	w, err := witness.DecodeJSON(testdata.WitnessJSON)
	require.NoError(b, err)

	for _, strategy := range bigint.Strategies() {
		svc, err := NewService(&journal.Journal{}, Config{Strategy: strategy})
		require.NoError(b, err)
		b.Run(string(strategy), func(b *testing.B) {
			for b.Loop() {
				if _, err := svc.Verify(w); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
