package bep15

import (
	"encoding/binary"

	"github.com/torrust/udp-connid-tracker/connid"
)

// ProtocolMagic is the fixed 8-byte value every BEP-15 connect request
// must carry in its first 8 bytes.
const ProtocolMagic uint64 = 0x0000041727101980

const (
	connectRequestSize  = 16
	connectResponseSize = 16
	// requestPrefixSize is the shared header of every non-connect
	// request: connection_id (8) || action (4) || transaction_id (4).
	requestPrefixSize = 16
)

// ConnectRequest is the 16-byte datagram a client sends to obtain a
// connection ID: magic (8B BE) || action=0 (4B BE) || transaction_id (4B).
type ConnectRequest struct {
	TransactionID uint32
}

// ParseConnectRequest validates and decodes a connect request datagram.
func ParseConnectRequest(data []byte) (ConnectRequest, error) {
	if len(data) < connectRequestSize {
		return ConnectRequest{}, ErrTooShort
	}
	if binary.BigEndian.Uint64(data[0:8]) != ProtocolMagic {
		return ConnectRequest{}, ErrBadMagic
	}
	action := Action(binary.BigEndian.Uint32(data[8:12]))
	if action != ActionConnect {
		return ConnectRequest{}, ErrBadAction
	}
	return ConnectRequest{
		TransactionID: binary.BigEndian.Uint32(data[12:16]),
	}, nil
}

// MarshalConnectResponse encodes a connect response: action=0 (4B BE) ||
// transaction_id (4B BE) || connection_id (8B, the little-endian bytes
// Issue produced, placed unchanged on the wire).
func MarshalConnectResponse(transactionID uint32, id connid.ConnectionID) []byte {
	out := make([]byte, connectResponseSize)
	binary.BigEndian.PutUint32(out[0:4], uint32(ActionConnect))
	binary.BigEndian.PutUint32(out[4:8], transactionID)
	binary.LittleEndian.PutUint64(out[8:16], uint64(id))
	return out
}

// RequestPrefix is the common 16-byte header shared by announce and
// scrape requests: connection_id (8B, little-endian) || action (4B BE) ||
// transaction_id (4B BE).
type RequestPrefix struct {
	ConnectionID  connid.ConnectionID
	Action        Action
	TransactionID uint32
}

// ParseRequestPrefix decodes the shared header of an announce or scrape
// request. The connection ID it returns MUST be checked with
// connid.Verify before any further parsing of the datagram.
func ParseRequestPrefix(data []byte) (RequestPrefix, error) {
	if len(data) < requestPrefixSize {
		return RequestPrefix{}, ErrTooShort
	}
	action := Action(binary.BigEndian.Uint32(data[8:12]))
	if action != ActionAnnounce && action != ActionScrape {
		return RequestPrefix{}, ErrBadAction
	}
	return RequestPrefix{
		ConnectionID:  connid.ConnectionID(int64(binary.LittleEndian.Uint64(data[0:8]))),
		Action:        action,
		TransactionID: binary.BigEndian.Uint32(data[12:16]),
	}, nil
}

// MarshalErrorResponse encodes a BEP-15 error response: action=3 (4B BE)
// || transaction_id (4B BE) || message (UTF-8, no trailing NUL).
//
// message MUST be a generic, non-distinguishing string — the caller must
// never surface detail that would reveal whether a connection ID was
// rejected for the wrong endpoint or because it expired.
func MarshalErrorResponse(transactionID uint32, message string) []byte {
	out := make([]byte, 8+len(message))
	binary.BigEndian.PutUint32(out[0:4], uint32(ActionError))
	binary.BigEndian.PutUint32(out[4:8], transactionID)
	copy(out[8:], message)
	return out
}

// GenericInvalidConnectionIDMessage is the only message this tracker
// sends for a failed connid.Verify. It is shared across every rejection
// cause so a client cannot distinguish them.
const GenericInvalidConnectionIDMessage = "Connection ID mismatch"
