package main

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/tslocum/cview"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/meetsync/internal/app/orch"
	"github.com/dkeye/meetsync/internal/config"
	"github.com/dkeye/meetsync/internal/domain"
)

// runTUI runs the same room loop behind a chat pane, a roster pane and an
// input line. Logs go to their own pane so they do not tear the screen.
func runTUI(ctx context.Context, cfg *config.Config, roomID domain.RoomID) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := cview.NewApplication()
	app.EnableMouse(true)

	chat := cview.NewTextView()
	chat.SetBorder(true)
	chat.SetTitle(fmt.Sprintf(" %s ", roomID))
	chat.SetScrollable(true)
	chat.SetChangedFunc(func() {
		chat.ScrollToEnd()
		app.Draw()
	})

	roster := cview.NewTextView()
	roster.SetBorder(true)
	roster.SetTitle(" participants ")

	logs := cview.NewTextView()
	logs.SetBorder(true)
	logs.SetTitle(" log ")
	logs.SetChangedFunc(func() { app.Draw() })
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: logs, NoColor: true})

	lines := make(chan string, 16)
	input := cview.NewInputField()
	input.SetLabel("> ")
	input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := input.GetText()
		input.SetText("")
		select {
		case lines <- text:
		default:
		}
	})

	side := cview.NewFlex()
	side.SetDirection(cview.FlexRow)
	side.AddItem(roster, 0, 2, false)
	side.AddItem(logs, 0, 1, false)

	body := cview.NewFlex()
	body.AddItem(chat, 0, 3, false)
	body.AddItem(side, 0, 1, false)

	root := cview.NewFlex()
	root.SetDirection(cview.FlexRow)
	root.AddItem(body, 0, 1, false)
	root.AddItem(input, 1, 0, true)
	app.SetRoot(root, true)
	app.SetFocus(input)

	done := make(chan error, 1)
	go func() {
		done <- run(ctx, cfg, roomID, lines, chat, func(o *orch.Orchestrator) {
			text := rosterText(o)
			app.QueueUpdateDraw(func() { roster.SetText(text) })
		})
		app.Stop()
	}()

	if err := app.Run(); err != nil {
		cancel()
		<-done
		return err
	}
	cancel()
	return <-done
}

func rosterText(o *orch.Orchestrator) string {
	var b strings.Builder
	for _, p := range o.Participants() {
		mark := "  "
		if p.Connected {
			mark = "● "
		}
		name := cview.Escape(o.DisplayName(p.ID))
		if p.IsLocalUser {
			name += " (you)"
		}
		b.WriteString(mark + name + "\n")
	}
	return b.String()
}
