package commitment

import (
	"fmt"
	"io"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/halofold/halofold"
	hio "github.com/halofold/halofold/io"
	"github.com/halofold/halofold/logger"
)

const keyMagic = "halofold.key"

// keyHeader is the cbor-encoded metadata blob written ahead of the basis
// points. It is validated on every load before any point is decoded.
type keyHeader struct {
	Magic   string `cbor:"magic"`
	Version string `cbor:"version"`
	Curve   string `cbor:"curve"`
	Size    uint64 `cbor:"size"`
}

func (h *keyHeader) validate(curve string) error {
	if h.Magic != keyMagic {
		return fmt.Errorf("%w: bad magic %q", ErrCorruptKey, h.Magic)
	}
	v, err := semver.Parse(h.Version)
	if err != nil {
		return fmt.Errorf("%w: unparsable version %q", ErrCorruptKey, h.Version)
	}
	if v.Major != halofold.Version.Major {
		return fmt.Errorf("%w: key written by v%s, running v%s", ErrVersionIncompat, h.Version, halofold.Version)
	}
	if v.GT(halofold.Version) {
		log := logger.Logger()
		log.Warn().Str("keyVersion", h.Version).Str("version", halofold.Version.String()).
			Msg("commitment key written by a newer library version")
	}
	if h.Curve != curve {
		return fmt.Errorf("%w: cached curve %q, requested %q", ErrKeyMismatch, h.Curve, curve)
	}
	return nil
}

// WriteTo writes the key to w: a length-prefixed cbor header, the compressed
// basis points, and a trailing blake2b digest of the point stream.
func (k *Key[E, P]) WriteTo(w io.Writer) (int64, error) {
	return k.writeTo(w, false)
}

// WriteRawTo writes the key like WriteTo but with uncompressed points, which
// trades file size for faster loads.
func (k *Key[E, P]) WriteRawTo(w io.Writer) (int64, error) {
	return k.writeTo(w, true)
}

func (k *Key[E, P]) writeTo(w io.Writer, raw bool) (int64, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return 0, err
	}
	blob, err := em.Marshal(&keyHeader{
		Magic:   keyMagic,
		Version: halofold.Version.String(),
		Curve:   k.ops.Name(),
		Size:    uint64(len(k.basis)),
	})
	if err != nil {
		return 0, fmt.Errorf("encode key header: %w", err)
	}
	n, err := hio.WriteBytesShort(blob, w)
	if err != nil {
		return n, err
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return n, err
	}
	m, err := k.ops.EncodePoints(io.MultiWriter(w, h), k.basis, raw)
	n += m
	if err != nil {
		return n, err
	}

	dn, err := w.Write(h.Sum(nil))
	return n + int64(dn), err
}

// ReadFrom reads a key written by WriteTo or WriteRawTo. The header is
// validated (magic, version compatibility, curve tag) before any point is
// decoded, and the trailing digest is checked against the point stream.
func (k *Key[E, P]) ReadFrom(r io.Reader) (int64, error) {
	return k.readFrom(r, false)
}

// UnsafeReadFrom reads a key like ReadFrom but skips subgroup membership
// checks on the basis points. The caller guarantees the stream holds a key it
// wrote itself; header and digest validation still run.
func (k *Key[E, P]) UnsafeReadFrom(r io.Reader) (int64, error) {
	return k.readFrom(r, true)
}

func (k *Key[E, P]) readFrom(r io.Reader, trusted bool) (int64, error) {
	blob, n, err := hio.ReadBytesShort(r)
	if err != nil {
		return n, fmt.Errorf("read key header: %w", err)
	}
	var hdr keyHeader
	if err := cbor.Unmarshal(blob, &hdr); err != nil {
		return n, fmt.Errorf("%w: undecodable header: %v", ErrCorruptKey, err)
	}
	if err := hdr.validate(k.ops.Name()); err != nil {
		return n, err
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return n, err
	}
	pts, m, err := k.ops.DecodePoints(io.TeeReader(r, h), int(hdr.Size), trusted)
	n += m
	if err != nil {
		return n, fmt.Errorf("decode basis points: %w", err)
	}

	var digest [blake2b.Size256]byte
	dn, err := io.ReadFull(r, digest[:])
	n += int64(dn)
	if err != nil {
		return n, fmt.Errorf("read key digest: %w", err)
	}
	if [blake2b.Size256]byte(h.Sum(nil)) != digest {
		return n, fmt.Errorf("%w: basis digest mismatch", ErrCorruptKey)
	}

	k.basis = pts
	return n, nil
}
