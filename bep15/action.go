// Package bep15 implements the fixed-layout UDP datagrams of the
// BitTorrent UDP tracker protocol (BEP-15): the connect request/response
// pair and the error response. Announce and scrape requests are parsed
// only up to their shared 16-byte header; their bodies are not parsed,
// and swarm storage and semantics are not implemented here.
package bep15

// Action identifies the kind of a BEP-15 datagram.
type Action uint32

const (
	// ActionConnect requests/returns a connection ID.
	ActionConnect Action = 0
	// ActionAnnounce carries swarm announce data; only its 16-byte
	// header (connection_id, action, transaction_id) is parsed by this
	// package.
	ActionAnnounce Action = 1
	// ActionScrape carries swarm scrape data; only its 16-byte header
	// (connection_id, action, transaction_id) is parsed by this package.
	ActionScrape Action = 2
	// ActionError is returned for any rejected request.
	ActionError Action = 3
)

func (a Action) IsValid() bool {
	switch a {
	case ActionConnect, ActionAnnounce, ActionScrape, ActionError:
		return true
	default:
		return false
	}
}

func (a Action) String() string {
	switch a {
	case ActionConnect:
		return "Connect"
	case ActionAnnounce:
		return "Announce"
	case ActionScrape:
		return "Scrape"
	case ActionError:
		return "Error"
	default:
		return "Unknown"
	}
}
