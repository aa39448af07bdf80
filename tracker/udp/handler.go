package udp

import (
	"context"
	"net/netip"

	"github.com/torrust/udp-connid-tracker/bep15"
)

// AnnounceHandler processes an announce or scrape request whose
// connection ID has already passed connid.Verify. Swarm storage and
// announce/scrape semantics are not implemented by this package; this
// interface is the seam a full tracker plugs into — Server only
// guarantees the connection-ID check happens first.
type AnnounceHandler interface {
	Handle(ctx context.Context, prefix bep15.RequestPrefix, payload []byte, from netip.AddrPort) ([]byte, error)
}

// NotImplementedHandler is the default AnnounceHandler: it responds to
// every verified announce/scrape request with a generic error, since no
// swarm storage is wired up in this subsystem.
type NotImplementedHandler struct{}

func (NotImplementedHandler) Handle(_ context.Context, prefix bep15.RequestPrefix, _ []byte, _ netip.AddrPort) ([]byte, error) {
	return bep15.MarshalErrorResponse(prefix.TransactionID, "announce/scrape not implemented"), nil
}
