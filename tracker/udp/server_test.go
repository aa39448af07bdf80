package udp

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/torrust/udp-connid-tracker/bep15"
	"github.com/torrust/udp-connid-tracker/connid"
	"github.com/torrust/udp-connid-tracker/tracker/logging"
)

func startTestServer(t *testing.T, secret connid.Secret, fixedNow uint64) (*Server, netip.AddrPort) {
	t.Helper()

	addr := netip.MustParseAddrPort("127.0.0.1:0")
	srv, err := New(addr, secret, nil, logging.New(io.Discard, "[udp-test] "))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv.nowFunc = func() uint64 { return fixedNow }

	boundAddr := srv.conn.LocalAddr().(*net.UDPAddr).AddrPort()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, 2) }()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return srv, boundAddr
}

func dialTest(t *testing.T, to netip.AddrPort) *net.UDPConn {
	t.Helper()
	conn, err := net.DialUDP("udp", nil, net.UDPAddrFromAddrPort(to))
	if err != nil {
		t.Fatalf("DialUDP: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func buildConnectRequest(txID uint32) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[0:8], bep15.ProtocolMagic)
	binary.BigEndian.PutUint32(buf[8:12], uint32(bep15.ActionConnect))
	binary.BigEndian.PutUint32(buf[12:16], txID)
	return buf
}

func buildAnnounceRequest(id connid.ConnectionID, txID uint32) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(id))
	binary.BigEndian.PutUint32(buf[8:12], uint32(bep15.ActionAnnounce))
	binary.BigEndian.PutUint32(buf[12:16], txID)
	return buf
}

func TestServerConnectRoundTrip(t *testing.T) {
	var secret connid.Secret
	_, addr := startTestServer(t, secret, 946684800)
	conn := dialTest(t, addr)

	if _, err := conn.Write(buildConnectRequest(7)); err != nil {
		t.Fatalf("write: %v", err)
	}

	resp := make([]byte, 64)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(resp)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	resp = resp[:n]

	if len(resp) != 16 {
		t.Fatalf("response length = %d, want 16", len(resp))
	}
	if bep15.Action(binary.BigEndian.Uint32(resp[0:4])) != bep15.ActionConnect {
		t.Fatal("action mismatch in connect response")
	}
	if binary.BigEndian.Uint32(resp[4:8]) != 7 {
		t.Fatal("transaction id mismatch in connect response")
	}

	localUDPAddr := conn.LocalAddr().(*net.UDPAddr).AddrPort()
	endpoint := connid.EndpointFromAddrPort(localUDPAddr)
	want := connid.Issue(secret, endpoint, 946684800)
	got := connid.ConnectionID(int64(binary.LittleEndian.Uint64(resp[8:16])))
	if got != want {
		t.Fatalf("connection id = %d, want %d", got, want)
	}
}

func TestServerRejectsBadConnectionID(t *testing.T) {
	var secret connid.Secret
	_, addr := startTestServer(t, secret, 946684800)
	conn := dialTest(t, addr)

	if _, err := conn.Write(buildAnnounceRequest(connid.ConnectionID(1), 9)); err != nil {
		t.Fatalf("write: %v", err)
	}

	resp := make([]byte, 64)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(resp)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	resp = resp[:n]

	if bep15.Action(binary.BigEndian.Uint32(resp[0:4])) != bep15.ActionError {
		t.Fatal("expected error response for invalid connection id")
	}
	if string(resp[8:]) != bep15.GenericInvalidConnectionIDMessage {
		t.Fatalf("message = %q, want %q", resp[8:], bep15.GenericInvalidConnectionIDMessage)
	}
}

func TestServerAcceptsValidConnectionIDForAnnounce(t *testing.T) {
	var secret connid.Secret
	srv, addr := startTestServer(t, secret, 946684800)
	conn := dialTest(t, addr)

	localUDPAddr := conn.LocalAddr().(*net.UDPAddr).AddrPort()
	endpoint := connid.EndpointFromAddrPort(localUDPAddr)
	id := connid.Issue(secret, endpoint, 946684800)

	if _, err := conn.Write(buildAnnounceRequest(id, 3)); err != nil {
		t.Fatalf("write: %v", err)
	}

	resp := make([]byte, 64)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(resp)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	resp = resp[:n]

	// NotImplementedHandler still returns an error action, but the
	// connection id itself must have been accepted (no connid mismatch
	// error message).
	if string(resp[8:]) == bep15.GenericInvalidConnectionIDMessage {
		t.Fatal("valid connection id was rejected")
	}

	snap := srv.Stats()
	if snap.VerifiesOK != 1 {
		t.Fatalf("VerifiesOK = %d, want 1", snap.VerifiesOK)
	}
}
