package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/luca-patrignani/sequence/client"
	"github.com/luca-patrignani/sequence/communication"
	"github.com/luca-patrignani/sequence/config"
	"github.com/luca-patrignani/sequence/discovery"
	"github.com/luca-patrignani/sequence/network"
)

const (
	browseTime = 3 * time.Second
	// envCert names the PEM file of a server started with TLS.
	envCert = "SEQUENCE_CERT"
)

const manualEntry = "Enter an address"

func main() {
	if len(os.Args) > 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [address]\n", os.Args[0])
		os.Exit(1)
	}

	handler := pterm.NewSlogHandler(&pterm.DefaultLogger)
	logger := slog.New(handler)

	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("S", pterm.FgGreen.ToStyle()),
		putils.LettersFromStringWithStyle("equence", pterm.FgDarkGray.ToStyle()),
	).Render()

	var addr string
	if len(os.Args) == 2 {
		addr = os.Args[1]
	} else {
		addr = chooseServer(logger)
	}
	addr, err := resolveAddress(addr, net.ParseIP(discovery.LocalIP()), config.DefaultPort)
	if err != nil {
		logger.Error("invalid address", "address", addr, "err", err)
		os.Exit(1)
	}

	opts := []client.Option{client.WithLogger(logger)}
	if path := os.Getenv(envCert); path != "" {
		tlsConfig, err := loadTLS(path)
		if err != nil {
			logger.Error("cannot use certificate", "path", path, "err", err)
			os.Exit(1)
		}
		opts = append(opts, client.WithTLS(tlsConfig))
	}

	name, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Enter your username").WithDefaultValue("").Show()
	pterm.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spinner, _ := pterm.DefaultSpinner.Start("Connecting to " + addr + " ...")
	c, err := client.Dial(ctx, addr, opts...)
	if err != nil {
		spinner.Fail(err.Error())
		os.Exit(1)
	}
	spinner.Success("Connected to " + addr)
	defer c.Close()

	if err := c.Login(name); err != nil {
		logger.Error("login failed", "err", err)
		os.Exit(1)
	}
	if err := play(ctx, c); err != nil {
		logger.Error("connection lost", "err", err)
		os.Exit(1)
	}
}

// chooseServer lists the sessions announced on the local network and lets the
// user pick one or type an address.
func chooseServer(logger *slog.Logger) string {
	spinner, _ := pterm.DefaultSpinner.Start("Looking for games on the local network ...")
	sessions, err := browse(browseTime)
	if err != nil {
		logger.Debug("browsing failed", "err", err)
	}
	if len(sessions) == 0 {
		spinner.Warning("No game announced")
	} else {
		spinner.Success(fmt.Sprintf("Found %d games", len(sessions)))
	}

	options := make([]string, 0, len(sessions)+1)
	byOption := make(map[string]string)
	for _, s := range sessions {
		option := fmt.Sprintf("%s at %s", s.Name, s.Address)
		options = append(options, option)
		byOption[option] = s.Address
	}
	options = append(options, manualEntry)
	selected, _ := pterm.DefaultInteractiveSelect.WithOptions(options).Show()
	if addr, ok := byOption[selected]; ok {
		return addr
	}
	addr, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Enter the server address (a partial IP like 42 uses your subnet)").WithDefaultValue("").Show()
	pterm.Println()
	return addr
}

func browse(d time.Duration) ([]discovery.Session, error) {
	b, err := discovery.Browse(discovery.DefaultPort)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	var found []discovery.Session
	timeout := time.After(d)
	for {
		select {
		case s, ok := <-b.Sessions:
			if !ok {
				return found, nil
			}
			found = append(found, s)
		case <-timeout:
			return found, nil
		}
	}
}

func loadTLS(path string) (*tls.Config, error) {
	certPEM, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return network.ClientTLSConfig(certPEM)
}

// play runs the game until it is over or the connection ends.
func play(ctx context.Context, c *client.Client) error {
	for {
		select {
		case <-ctx.Done():
			_ = c.Bye()
			return nil
		case ev, ok := <-c.Events():
			if !ok {
				return c.Err()
			}
			if done := handle(c, ev); done {
				_ = c.Bye()
				return nil
			}
		}
	}
}

// handle shows ev and asks the user for input when needed. It reports whether
// the game is over.
func handle(c *client.Client, ev communication.Event) bool {
	s := c.State()
	switch e := ev.(type) {
	case communication.Logged:
		pterm.Success.Printfln("Logged in as %s (id %d)", e.Name, e.ID)
		askStart(c)
	case communication.Wait:
		pterm.Warning.Println(e.Reason)
		askStart(c)
	case communication.GameStarted:
		pterm.Info.Printfln("Game started: %s", describeOrder(s))
	case communication.CardPlayed:
		pterm.Info.Printfln("%s played %s on (%d, %d)", playerName(s, e.ID), s.Game.Rules().Describe(e.HandCardCode), e.X, e.Y)
	case communication.DiscardedCard:
		pterm.Info.Printfln("%s discarded %s", playerName(s, e.ID), s.Game.Rules().Describe(e.CardCode))
	case communication.TurnStart:
		printState(s)
		if s.MyTurn() {
			askMove(c)
		} else {
			pterm.Info.Printfln("Waiting for %s ...", playerName(s, e.ID))
		}
	case communication.GameOver:
		printState(s)
		if e.WinningID == s.ID {
			pterm.Success.Println("You won!")
		} else {
			pterm.Info.Printfln("%s won the game", playerName(s, e.WinningID))
		}
		return true
	case communication.ChatRelay:
		pterm.Println(pterm.LightCyan(e.Name+": ") + e.Text)
	case communication.Error:
		pterm.Error.Println(e.Msg)
		if s.MyTurn() {
			askMove(c)
		}
	}
	return false
}

func askStart(c *client.Client) {
	ok, _ := pterm.DefaultInteractiveConfirm.WithDefaultText("Start the game now?").Show()
	if !ok {
		return
	}
	if err := c.RequestStart(); err != nil {
		pterm.Error.Println(err.Error())
	}
}

const (
	chatOption    = "Send a chat message"
	discardOption = "Discard this card"
)

// askMove lets the user pick a card and a cell, or discard a dead card.
func askMove(c *client.Client) {
	for {
		s := c.State()
		options := handOptions(s)
		options = append(options, chatOption)
		selected, _ := pterm.DefaultInteractiveSelect.WithDefaultText("Your move").WithOptions(options).Show()
		if selected == chatOption {
			text, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Message").Show()
			if err := c.Chat(text); err != nil {
				pterm.Error.Println(err.Error())
			}
			continue
		}
		i := indexOf(options, selected)
		if i < 0 || i >= len(s.Hand) {
			continue
		}
		cells := cellOptions(s, i)
		cells = append(cells, discardOption)
		target, _ := pterm.DefaultInteractiveSelect.WithDefaultText("Where?").WithOptions(cells).Show()
		var err error
		if target == discardOption {
			err = c.Discard(i)
		} else {
			var x, y int
			if _, err = fmt.Sscanf(target, "(%d, %d)", &x, &y); err == nil {
				err = c.Play(i, x, y)
			}
		}
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		return
	}
}

func indexOf(options []string, selected string) int {
	for i, o := range options {
		if o == selected {
			return i
		}
	}
	return -1
}
