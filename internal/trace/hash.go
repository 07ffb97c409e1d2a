package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/roach88/outbreak/internal/chain"
)

// Domain prefixes for content-addressed identity.
const (
	DomainState  = "outbreak/state/v1"
	DomainDraws  = "outbreak/draws/v1"
	DomainConfig = "outbreak/config/v1"
	DomainData   = "outbreak/data/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FloatBits encodes f by its IEEE-754 bit pattern as 16 hex digits.
func FloatBits(f float64) string {
	return fmt.Sprintf("%016x", math.Float64bits(f))
}

// StateObject converts s into a canonical-JSON friendly map. Roots encode as
// infector 0.
func StateObject(s chain.State) map[string]any {
	tInf := make([]any, len(s.TInf))
	for i, t := range s.TInf {
		tInf[i] = t
	}
	alpha := make([]any, len(s.Alpha))
	for i, a := range s.Alpha {
		alpha[i] = int(a)
	}
	return map[string]any{
		"mu":    FloatBits(s.Mu),
		"t_inf": tInf,
		"alpha": alpha,
	}
}

// StateHash computes the content-addressed identity of s.
func StateHash(s chain.State) (string, error) {
	canonical, err := MarshalCanonical(StateObject(s))
	if err != nil {
		return "", fmt.Errorf("StateHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// ConfigHash computes the identity of a serialized run configuration.
// Callers must serialize deterministically.
func ConfigHash(raw []byte) string {
	return hashWithDomain(DomainConfig, raw)
}

// DataHash computes the identity of a raw case file.
func DataHash(raw []byte) string {
	return hashWithDomain(DomainData, raw)
}
