package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	apihttp "github.com/dkeye/meetsync/internal/adapters/http"
	"github.com/dkeye/meetsync/internal/adapters/rtc"
	sig "github.com/dkeye/meetsync/internal/adapters/signal"
	"github.com/dkeye/meetsync/internal/app"
	"github.com/dkeye/meetsync/internal/app/orch"
	"github.com/dkeye/meetsync/internal/config"
	"github.com/dkeye/meetsync/internal/core"
	"github.com/dkeye/meetsync/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	tui := pflag.Bool("tui", false, "full-screen terminal UI")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [--tui] <room-id>\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	zerolog.SetGlobalLevel(cfg.Level())

	roomID := domain.RoomID(pflag.Arg(0))
	if *tui {
		err = runTUI(ctx, cfg, roomID)
	} else {
		err = run(ctx, cfg, roomID, scanLines(ctx, os.Stdin), os.Stdout, nil)
	}
	if err != nil {
		log.Error().Err(err).Msg("meetctl failed")
		os.Exit(1)
	}
}

// run drives one room visit until input stops or ctx is done.
// onChange, when set, runs after every view change.
func run(ctx context.Context, cfg *config.Config, roomID domain.RoomID, lines <-chan string, out io.Writer, onChange func(*orch.Orchestrator)) error {
	token := cfg.Client.Token
	if token == "" && cfg.Client.TokenFile != "" {
		t, err := app.ReadTokenFile(cfg.Client.TokenFile)
		if err != nil {
			return err
		}
		token = t
	}
	identity, err := app.ResolveIdentity(token)
	if err != nil {
		return err
	}

	session := app.NewSession(ctx, roomID, identity)
	api := apihttp.NewClient(cfg.Client.APIURL, token, cfg.Client.RequestTimeout)
	tr := sig.NewClient(sig.Options{
		URL:          cfg.Client.WSURL,
		Token:        token,
		MinBackoff:   cfg.Client.MinBackoff,
		MaxBackoff:   cfg.Client.MaxBackoff,
		PingPeriod:   cfg.Client.PingPeriod,
		PongWait:     cfg.Client.PongWait,
		ReadLimit:    cfg.Client.ReadLimit,
		RateLimit:    cfg.Client.SendRateLimit,
		RateInterval: cfg.Client.SendRateInterval,
	})
	defer tr.Close()
	media := rtc.NewCapturer(rtc.Permissions{
		Camera:     cfg.Media.Camera,
		Microphone: cfg.Media.Microphone,
		Screen:     cfg.Media.Screen,
	})
	if cfg.Media.Synthetic {
		media.EnableSynthetic()
	}

	o := orch.New(session, api, tr, media)
	view := newRenderer(out, o)
	o.OnError = view.Error
	o.OnChange = func(v core.View) {
		view.Render(v)
		if onChange != nil {
			onChange(o)
		}
	}

	if err := o.Start(ctx); err != nil {
		return err
	}
	defer o.Leave()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if !command(o, view, strings.TrimSpace(line)) {
				return nil
			}
		}
	}
}

func scanLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// command handles one input line and reports whether to keep going.
func command(o *orch.Orchestrator, view *renderer, line string) bool {
	switch line {
	case "":
	case "/leave", "/quit":
		return false
	case "/who":
		view.Roster()
	case "/mute":
		if on, err := o.ToggleAudio(); err != nil {
			view.Error(err)
		} else {
			view.Notice("microphone %s", onOff(on))
		}
	case "/video":
		if on, err := o.ToggleVideo(); err != nil {
			view.Error(err)
		} else {
			view.Notice("camera %s", onOff(on))
		}
	case "/screen":
		if on, err := o.ToggleScreenShare(); err == nil {
			view.Notice("screen share %s", onOff(on))
		}
	default:
		if err := o.SendChatMessage(line); err != nil {
			view.Error(err)
		}
	}
	return true
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
