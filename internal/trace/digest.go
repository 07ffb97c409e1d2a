package trace

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"github.com/roach88/outbreak/internal/rng"
)

// DrawDigest wraps a Source and hashes every draw it hands out. Each draw
// contributes its kind, a zero byte and the big-endian bits of its value.
// Two runs that consumed the same stream have the same Sum.
type DrawDigest struct {
	src   rng.Source
	h     hash.Hash
	count int64
	buf   [8]byte
}

// NewDrawDigest wraps src.
func NewDrawDigest(src rng.Source) *DrawDigest {
	h := sha256.New()
	h.Write([]byte(DomainDraws))
	h.Write([]byte{0x00})
	return &DrawDigest{src: src, h: h}
}

// Uniform implements rng.Source.
func (d *DrawDigest) Uniform() float64 {
	v := d.src.Uniform()
	d.add(rng.KindUniform, v)
	return v
}

// Normal implements rng.Source.
func (d *DrawDigest) Normal(sd float64) float64 {
	v := d.src.Normal(sd)
	d.add(rng.KindNormal, v)
	return v
}

func (d *DrawDigest) add(kind rng.DrawKind, v float64) {
	d.h.Write([]byte(kind))
	d.h.Write([]byte{0x00})
	binary.BigEndian.PutUint64(d.buf[:], math.Float64bits(v))
	d.h.Write(d.buf[:])
	d.count++
}

// Count returns the number of draws taken so far.
func (d *DrawDigest) Count() int64 { return d.count }

// Sum returns the hex digest of the draws taken so far. It does not reset
// the digest.
func (d *DrawDigest) Sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}
