package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/luca-patrignani/sequence/config"
	"github.com/luca-patrignani/sequence/discovery"
	"github.com/luca-patrignani/sequence/domain/sequence"
	"github.com/luca-patrignani/sequence/ledger"
	"github.com/luca-patrignani/sequence/network"
	"github.com/luca-patrignani/sequence/session"
)

const certFile = "sequence-cert.pem"

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(1)
	}

	pterm.DefaultLogger.Level = cfg.PtermLevel()
	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))
	slog.SetDefault(logger)

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("S", pterm.FgGreen.ToStyle()),
		putils.LettersFromStringWithStyle("equence", pterm.FgDarkGray.ToStyle()),
	).Render()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		var cfgErr *sequence.ConfigurationError
		if errors.As(err, &cfgErr) {
			pterm.Error.Println(cfgErr.Error())
		} else {
			logger.Error("server stopped", "err", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	signer := ledger.NewSigner()
	ctrl, err := session.New(sequence.DefaultRuleset(),
		session.WithLogger(logger),
		session.WithSigner(signer),
	)
	if err != nil {
		return err
	}

	l, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Addr(), err)
	}
	advertised := net.JoinHostPort(discovery.LocalIP(), strconv.Itoa(cfg.Port))

	opts := []network.Option{network.WithLogger(logger)}
	if cfg.TLS {
		cert, certPEM, err := network.GenerateSelfSignedCert(advertised)
		if err != nil {
			return errors.Join(err, l.Close())
		}
		if err := os.WriteFile(certFile, certPEM, 0o644); err != nil {
			return errors.Join(err, l.Close())
		}
		pterm.Info.Printfln("TLS certificate for clients written to %s", certFile)
		opts = append(opts, network.WithCertificate(cert))
	}

	server := network.NewServer(l, ctrl, opts...)
	// The session outlives ctx so that it can be summarized on shutdown.
	sessionCtx, stopSession := context.WithCancel(context.Background())
	defer stopSession()
	fatal := make(chan error, 3)
	go func() {
		if err := ctrl.Run(sessionCtx); !errors.Is(err, context.Canceled) {
			fatal <- fmt.Errorf("session: %w", err)
		}
	}()
	go func() {
		if err := server.Serve(); err != nil {
			fatal <- fmt.Errorf("tcp server: %w", err)
		}
	}()
	pterm.Info.Printfln("Session %s listening on %s", ctrl.ID(), server.Addr())
	pterm.Info.Printfln("Journal key %s", signer.PublicHex())
	if tcpListener, ok := l.(*net.TCPListener); ok {
		if subnet, err := subnetOfListener(tcpListener); err == nil {
			pterm.Info.Printfln("Players on %s can join at %s", subnet.String(), advertised)
		} else {
			logger.Debug("no subnet for listener", "err", err)
		}
	}

	var gateway *network.Gateway
	if cfg.WebSocketAddr != "" {
		wl, err := net.Listen("tcp", cfg.WebSocketAddr)
		if err != nil {
			return errors.Join(fmt.Errorf("listening on %s: %w", cfg.WebSocketAddr, err), server.Close())
		}
		gateway = network.NewGateway(ctrl, opts...)
		go func() {
			if err := gateway.Serve(wl); err != nil {
				fatal <- fmt.Errorf("websocket gateway: %w", err)
			}
		}()
		pterm.Info.Printfln("WebSocket gateway on %s/ws", wl.Addr().String())
	}

	var announcer *discovery.Discover
	if cfg.Announce {
		announcer, err = discovery.Announce(discovery.Session{
			ID:      ctrl.ID().String(),
			Name:    cfg.Name,
			Address: advertised,
		}, cfg.AnnouncePort, time.Second)
		if err != nil {
			logger.Warn("session not announced on the local network", "err", err)
			announcer = nil
		} else {
			pterm.Info.Printfln("Announcing %q on UDP port %d", cfg.Name, cfg.AnnouncePort)
		}
	}

	pterm.Println()
	var runErr error
	select {
	case <-ctx.Done():
		pterm.Println()
		pterm.Info.Println("Shutting down")
	case runErr = <-fatal:
	}

	if snap, err := snapshot(ctrl); err == nil {
		printSummary(snap)
	}
	stopSession()

	closeErr := server.Close()
	if gateway != nil {
		closeErr = errors.Join(closeErr, gateway.Close())
	}
	if announcer != nil {
		closeErr = errors.Join(closeErr, announcer.Close())
	}

	spinner, _ := pterm.DefaultSpinner.Start("Verifying the move journal ...")
	if err := ctrl.Journal().Verify(); err != nil {
		spinner.Fail(err.Error())
		closeErr = errors.Join(closeErr, err)
	} else {
		spinner.Success(fmt.Sprintf("Journal verified: %d blocks", ctrl.Journal().Len()))
	}

	return errors.Join(runErr, closeErr)
}

// snapshot reads the session state, unless the controller already stopped.
func snapshot(ctrl *session.Controller) (session.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return ctrl.Snapshot(ctx)
}
