package circuit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weikengchen/fps-r0/bigint"
	"github.com/weikengchen/fps-r0/dkim"
	"github.com/weikengchen/fps-r0/testdata"
	"github.com/weikengchen/fps-r0/witness"
)

func sampleAssignment(t *testing.T) (*witness.Witness, dkim.PaddedBlock) {
	t.Helper()
	w, err := witness.DecodeJSON(testdata.WitnessJSON)
	require.NoError(t, err)
	digests := dkim.ComputeDigests(dkim.Reconstruct(w))
	return w, dkim.BuildPaddedDigest(digests.DataHash)
}

func TestRing2048(t *testing.T) {
	var r Ring2048
	require.Equal(t, 2048, r.Modulus().BitLen())
	require.Equal(t, uint(2048), r.NbLimbs()*r.BitsPerLimb())
}

func TestCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping emulated 2048-bit circuit in short mode")
	}

	w, expected := sampleAssignment(t)
	n := bigint.DefaultContext().Modulus()

	t.Run("valid signature", func(t *testing.T) {
		require.NoError(t, Check(NewAssignment(n, w.Signature, expected[:])))
	})

	t.Run("wrong expected block", func(t *testing.T) {
		bad := expected
		bad[len(bad)-1] ^= 0x01
		err := Check(NewAssignment(n, w.Signature, bad[:]))
		require.Error(t, err)
		require.Contains(t, err.Error(), "circuit not satisfied")
	})
}
