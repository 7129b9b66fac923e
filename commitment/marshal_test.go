package commitment_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/halofold/halofold/commitment"
	"github.com/halofold/halofold/curve/bn254"
	"github.com/halofold/halofold/curve/grumpkin"
	hio "github.com/halofold/halofold/io"
)

var (
	_ io.WriterTo          = (*commitment.Key[bn254.Scalar, bn254.Point])(nil)
	_ io.ReaderFrom        = (*commitment.Key[bn254.Scalar, bn254.Point])(nil)
	_ hio.WriterRawTo      = (*commitment.Key[bn254.Scalar, bn254.Point])(nil)
	_ hio.UnsafeReaderFrom = (*commitment.Key[bn254.Scalar, bn254.Point])(nil)
)

func setupKey(t *testing.T, size int) *commitment.Key[bn254.Scalar, bn254.Point] {
	t.Helper()
	k, err := bn254.Setup(size)
	require.NoError(t, err)
	return k
}

func TestKeyRoundTrip(t *testing.T) {
	k := setupKey(t, 8)

	var buf bytes.Buffer
	wn, err := k.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, buf.Len(), wn)

	loaded := bn254.NewKey()
	rn, err := loaded.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, wn, rn)
	require.Empty(t, cmp.Diff(k.BasisPoints(), loaded.BasisPoints()))
}

func TestKeyRoundTripRaw(t *testing.T) {
	k := setupKey(t, 8)

	var buf bytes.Buffer
	_, err := k.WriteRawTo(&buf)
	require.NoError(t, err)

	// the point encoding is self-describing, the regular read path handles
	// raw streams
	loaded := bn254.NewKey()
	_, err = loaded.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(k.BasisPoints(), loaded.BasisPoints()))
}

func TestKeyUnsafeRead(t *testing.T) {
	k := setupKey(t, 4)

	var buf bytes.Buffer
	_, err := k.WriteTo(&buf)
	require.NoError(t, err)

	loaded := bn254.NewKey()
	_, err = loaded.UnsafeReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(k.BasisPoints(), loaded.BasisPoints()))
}

func TestKeyWrongCurve(t *testing.T) {
	k := setupKey(t, 4)

	var buf bytes.Buffer
	_, err := k.WriteTo(&buf)
	require.NoError(t, err)

	_, err = grumpkin.NewKey().ReadFrom(bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, commitment.ErrKeyMismatch)
}

func TestKeyCorruptHeader(t *testing.T) {
	k := setupKey(t, 4)

	var buf bytes.Buffer
	_, err := k.WriteTo(&buf)
	require.NoError(t, err)

	data := buf.Bytes()
	data[1] ^= 0xff
	_, err = bn254.NewKey().ReadFrom(bytes.NewReader(data))
	require.ErrorIs(t, err, commitment.ErrCorruptKey)
}

func TestKeyCorruptDigest(t *testing.T) {
	k := setupKey(t, 4)

	var buf bytes.Buffer
	_, err := k.WriteTo(&buf)
	require.NoError(t, err)

	data := buf.Bytes()
	data[len(data)-1] ^= 0x01
	_, err = bn254.NewKey().ReadFrom(bytes.NewReader(data))
	require.ErrorIs(t, err, commitment.ErrCorruptKey)
}

func TestKeyVersionIncompat(t *testing.T) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	require.NoError(t, err)
	blob, err := em.Marshal(map[string]any{
		"magic":   "halofold.key",
		"version": "999.0.0",
		"curve":   "bn254",
		"size":    uint64(1),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = hio.WriteBytesShort(blob, &buf)
	require.NoError(t, err)

	_, err = bn254.NewKey().ReadFrom(bytes.NewReader(buf.Bytes()))
	require.ErrorIs(t, err, commitment.ErrVersionIncompat)
}

func TestKeyTruncated(t *testing.T) {
	k := setupKey(t, 4)

	var buf bytes.Buffer
	_, err := k.WriteTo(&buf)
	require.NoError(t, err)

	data := buf.Bytes()[:buf.Len()-10]
	_, err = bn254.NewKey().ReadFrom(bytes.NewReader(data))
	require.Error(t, err)
}
