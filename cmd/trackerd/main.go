// Command trackerd runs the BEP-15 UDP tracker front end: it binds one
// UDP socket per enabled tracker entry, issuing and verifying
// connection IDs per the stateless subsystem in package connid. It does
// not implement announce/scrape swarm storage — see tracker/udp's
// AnnounceHandler seam.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/torrust/udp-connid-tracker/connid"
	"github.com/torrust/udp-connid-tracker/tracker/admin"
	"github.com/torrust/udp-connid-tracker/tracker/config"
	"github.com/torrust/udp-connid-tracker/tracker/logging"
	"github.com/torrust/udp-connid-tracker/tracker/secretgen"
	"github.com/torrust/udp-connid-tracker/tracker/udp"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("trackerd", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML configuration file (defaults built in if empty)")
	workers := fs.Int("workers", 4, "UDP worker goroutines per bound tracker")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	secret, err := resolveSecret(cfg)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, "[trackerd] ")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	servers, err := startServers(cfg, secret, logger)
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		return fmt.Errorf("trackerd: no enabled udp_trackers in configuration")
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		group.Go(func() error { return srv.Serve(ctx, *workers) })
	}

	if cfg.TrackerUsageStatistics {
		group.Go(func() error { return runDashboard(ctx, servers[0]) })
	}

	return group.Wait()
}

func resolveSecret(cfg config.Config) (connid.Secret, error) {
	if cfg.SecretHex == "" {
		return secretgen.Random()
	}
	return secretgen.FromHex(cfg.SecretHex)
}

func startServers(cfg config.Config, secret connid.Secret, logger *logging.Logger) ([]*udp.Server, error) {
	var servers []*udp.Server
	for _, t := range cfg.UDPTrackers {
		if !t.Enabled {
			continue
		}
		addr, err := parseBindAddress(t.BindAddress)
		if err != nil {
			return nil, fmt.Errorf("trackerd: %s: %w", t.BindAddress, err)
		}
		srv, err := udp.New(addr, secret, udp.NotImplementedHandler{}, logger)
		if err != nil {
			return nil, fmt.Errorf("trackerd: bind %s: %w", t.BindAddress, err)
		}
		logger.Info("listening on %s", addr)
		servers = append(servers, srv)
	}
	return servers, nil
}

func parseBindAddress(raw string) (netip.AddrPort, error) {
	addr, err := netip.ParseAddrPort(raw)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("invalid bind address %q: %w", raw, err)
	}
	return addr, nil
}

func runDashboard(ctx context.Context, srv *udp.Server) error {
	program := tea.NewProgram(admin.NewModel(statsAdapter{srv}))
	go func() {
		<-ctx.Done()
		program.Quit()
	}()
	_, err := program.Run()
	return err
}

// statsAdapter bridges tracker/udp.Server's Snapshot type to the
// admin.Snapshot type the dashboard renders, keeping the two packages
// decoupled for testing.
type statsAdapter struct {
	srv *udp.Server
}

func (a statsAdapter) Stats() admin.Snapshot {
	s := a.srv.Stats()
	return admin.Snapshot{
		ConnectsIssued:   s.ConnectsIssued,
		VerifiesOK:       s.VerifiesOK,
		VerifiesRejected: s.VerifiesRejected,
	}
}
