// Package udp implements the BEP-15 UDP transport front end: it frames
// datagrams with package bep15 and authenticates them with package
// connid, using the UDP source address reported by the socket layer as
// the only trusted endpoint.
package udp

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/torrust/udp-connid-tracker/bep15"
	"github.com/torrust/udp-connid-tracker/connid"
	"github.com/torrust/udp-connid-tracker/tracker/logging"
)

// maxDatagramSize is large enough for any BEP-15 request this tracker
// parses; oversized reads are simply truncated by ReadMsgUDPAddrPort.
const maxDatagramSize = 2048

// Server is a BEP-15 UDP tracker front end bound to one secret. It owns
// no peer/swarm state; it exists to issue and verify connection IDs and
// hand verified announce/scrape requests to an AnnounceHandler.
type Server struct {
	conn     *net.UDPConn
	cache    *connid.PepperCache
	announce AnnounceHandler
	logger   *logging.Logger
	stats    Stats

	// nowFunc returns the current Unix timestamp; overridable in tests.
	nowFunc func() uint64
}

// New binds a UDP socket at addr and returns a Server ready to Serve.
func New(addr netip.AddrPort, secret connid.Secret, announce AnnounceHandler, logger *logging.Logger) (*Server, error) {
	conn, err := net.ListenUDP("udp", net.UDPAddrFromAddrPort(addr))
	if err != nil {
		return nil, err
	}
	if announce == nil {
		announce = NotImplementedHandler{}
	}
	return &Server{
		conn:     conn,
		cache:    connid.NewPepperCache(secret),
		announce: announce,
		logger:   logger,
		nowFunc:  func() uint64 { return uint64(time.Now().Unix()) },
	}, nil
}

// Stats returns a snapshot of this server's connect/verify counters.
func (s *Server) Stats() Snapshot {
	return s.stats.Snapshot()
}

// Close releases the underlying socket.
func (s *Server) Close() error {
	return s.conn.Close()
}

// Serve runs workerCount goroutines, each reading and handling datagrams
// from the socket until ctx is canceled or the socket is closed. It
// imposes no ordering between concurrent requests — each datagram is
// handled independently on whichever worker reads it.
func (s *Server) Serve(ctx context.Context, workerCount int) error {
	if workerCount < 1 {
		workerCount = 1
	}

	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workerCount; i++ {
		group.Go(func() error {
			return s.workerLoop(ctx)
		})
	}

	<-ctx.Done()
	_ = s.conn.Close()
	err := group.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) workerLoop(ctx context.Context) error {
	buf := make([]byte, maxDatagramSize)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, _, _, from, err := s.conn.ReadMsgUDPAddrPort(buf, nil)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Warn("read error: %v", err)
			continue
		}
		s.handleDatagram(ctx, buf[:n], from)
	}
}

func (s *Server) handleDatagram(ctx context.Context, data []byte, from netip.AddrPort) {
	endpoint := connid.EndpointFromAddrPort(from)
	now := s.nowFunc()

	if req, err := bep15.ParseConnectRequest(data); err == nil {
		id := connid.IssueCached(s.cache, endpoint, now)
		s.stats.recordIssue()
		s.writeTo(bep15.MarshalConnectResponse(req.TransactionID, id), from)
		return
	}

	prefix, err := bep15.ParseRequestPrefix(data)
	if err != nil {
		s.logger.Warn("malformed datagram from %s: %v", from, err)
		return
	}

	verifyErr := connid.VerifyCached(prefix.ConnectionID, s.cache, endpoint, now)
	s.stats.recordVerify(verifyErr == nil)
	if verifyErr != nil {
		s.writeTo(bep15.MarshalErrorResponse(prefix.TransactionID, bep15.GenericInvalidConnectionIDMessage), from)
		return
	}

	response, err := s.announce.Handle(ctx, prefix, data[16:], from)
	if err != nil {
		s.logger.Error("announce handler: %v", err)
		return
	}
	s.writeTo(response, from)
}

func (s *Server) writeTo(data []byte, to netip.AddrPort) {
	if _, err := s.conn.WriteToUDPAddrPort(data, to); err != nil {
		s.logger.Warn("write error to %s: %v", to, err)
	}
}
