package connid

import (
	"encoding/binary"
	"net/netip"

	"github.com/zeebo/blake3"
)

// Endpoint is the (IP, port) pair a connection ID is bound to. Callers
// MUST construct this from the observed source address of the UDP
// datagram — never from a client-supplied field.
type Endpoint struct {
	IP   netip.Addr
	Port uint16
}

// EndpointFromAddrPort builds an Endpoint from the address reported by
// the socket layer (e.g. net.UDPConn.ReadMsgUDPAddrPort).
func EndpointFromAddrPort(addr netip.AddrPort) Endpoint {
	return Endpoint{IP: addr.Addr(), Port: addr.Port()}
}

// ConnectionID is the 64-bit token issued in a BEP-15 connect response
// and required on subsequent announce/scrape requests. It is opaque: no
// attempt is made to hide its sign or restrict its range.
type ConnectionID int64

// ErrInvalidConnectionID is the single failure signal Verify returns.
// Callers MUST NOT attempt to distinguish "wrong endpoint" from "expired
// slot" from this error — doing so would leak timing information about
// when the token was issued.
type ErrInvalidConnectionID struct{}

func (ErrInvalidConnectionID) Error() string {
	return "connid: invalid connection id"
}

// Issue derives the connection ID bound to endpoint at time now, using
// secret as the keyed-hash input. Issue is total: it cannot fail for any
// well-formed endpoint, secret, and timestamp.
func Issue(secret Secret, endpoint Endpoint, now uint64) ConnectionID {
	return issueWithPepper(pepper(secret, now), endpoint)
}

// issueWithPepper is the shared core of Issue and IssueCached: it exists
// so a caller holding a precomputed pepper (e.g. from PepperCache) never
// pays for a second BLAKE3(secret || slot) invocation.
func issueWithPepper(p block32, endpoint Endpoint) ConnectionID {
	auth := combine(encodeIP(endpoint.IP), encodePort(endpoint.Port))

	h := blake3.New()
	h.Write(p[:])
	h.Write(auth[:])
	digest := h.Sum(nil)

	return ConnectionID(int64(binary.LittleEndian.Uint64(digest[:8])))
}

// Verify reports whether id is a connection ID that Issue would have
// produced for endpoint at now or at the immediately preceding slot. It
// returns ErrInvalidConnectionID on any other mismatch, including a
// stale or never-issued id.
func Verify(id ConnectionID, secret Secret, endpoint Endpoint, now uint64) error {
	if id == Issue(secret, endpoint, now) {
		return nil
	}
	if id == Issue(secret, endpoint, saturatingSub120(now)) {
		return nil
	}
	return ErrInvalidConnectionID{}
}

// IssueCached behaves like Issue but draws its pepper from cache instead
// of recomputing BLAKE3(secret || slot) on every call.
func IssueCached(cache *PepperCache, endpoint Endpoint, now uint64) ConnectionID {
	return issueWithPepper(cache.Get(now), endpoint)
}

// VerifyCached behaves like Verify but draws both peppers from cache
// instead of recomputing BLAKE3(secret || slot) on every call.
func VerifyCached(id ConnectionID, cache *PepperCache, endpoint Endpoint, now uint64) error {
	if id == issueWithPepper(cache.Get(now), endpoint) {
		return nil
	}
	if id == issueWithPepper(cache.Get(saturatingSub120(now)), endpoint) {
		return nil
	}
	return ErrInvalidConnectionID{}
}

// saturatingSub120 computes now-120 without wrapping on unsigned
// underflow: timestamps below SlotDuration saturate to zero rather than
// wrapping to a value near 2^64, which would otherwise reject every
// token issued in the first 120 seconds after an epoch or clock reset.
func saturatingSub120(now uint64) uint64 {
	if now < SlotDuration {
		return 0
	}
	return now - SlotDuration
}
