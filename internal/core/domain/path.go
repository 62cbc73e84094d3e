package domain

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// pathAddrLen is the byte length of one asset address in a path.
	pathAddrLen = 20
	// pathHopLen is the byte length of one (fee tier, address) hop extension.
	pathHopLen = 23
)

// ErrPathsDisjoint is returned by Connect when the first path does not end
// where the second begins.
var ErrPathsDisjoint = errors.New("paths do not share a junction asset")

// SwapPath is the byte encoding of a multi-hop swap route: asset addresses
// interleaved with 3-byte fee tiers, terminating in the destination asset.
// A bare 20-byte path names a single asset and routes nothing.
type SwapPath []byte

// SingleAssetPath returns the degenerate path holding only the given asset.
func SingleAssetPath(asset common.Address) SwapPath {
	return SwapPath(asset.Bytes())
}

// IsValid reports whether the encoding is structurally sound: either a bare
// address or N addresses joined by N-1 fee tiers (length 20 mod 23).
func (p SwapPath) IsValid() bool {
	if len(p) < pathAddrLen {
		return false
	}
	return (len(p)-pathAddrLen)%pathHopLen == 0
}

// Origin returns the first asset of the path. Callers must validate first;
// extraction on a malformed path is undefined.
func (p SwapPath) Origin() common.Address {
	return common.BytesToAddress(p[:pathAddrLen])
}

// Destination returns the last asset of the path.
func (p SwapPath) Destination() common.Address {
	return common.BytesToAddress(p[len(p)-pathAddrLen:])
}

// IsSingleAsset reports whether the path routes within one asset.
func (p SwapPath) IsSingleAsset() bool {
	return p.Origin() == p.Destination()
}

// Connect concatenates p with next into one route, dropping the duplicated
// junction asset shared at the seam. Fails if p's destination is not next's
// origin.
func (p SwapPath) Connect(next SwapPath) (SwapPath, error) {
	if p.Destination() != next.Origin() {
		return nil, ErrPathsDisjoint
	}
	joined := make(SwapPath, 0, len(p)+len(next)-pathAddrLen)
	joined = append(joined, p...)
	joined = append(joined, next[pathAddrLen:]...)
	return joined, nil
}

// Clone returns an independent copy of the path bytes.
func (p SwapPath) Clone() SwapPath {
	cp := make(SwapPath, len(p))
	copy(cp, p)
	return cp
}
