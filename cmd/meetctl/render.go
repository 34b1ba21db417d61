package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dkeye/meetsync/internal/app/orch"
	"github.com/dkeye/meetsync/internal/core"
	"github.com/dkeye/meetsync/internal/domain"
)

// renderer prints only what changed since the last view.
type renderer struct {
	out io.Writer
	o   *orch.Orchestrator

	mu        sync.Mutex
	phase     core.Phase
	printed   int
	presence  map[domain.UserID]bool
	announced bool
}

func newRenderer(out io.Writer, o *orch.Orchestrator) *renderer {
	return &renderer{out: out, o: o, presence: make(map[domain.UserID]bool)}
}

func (r *renderer) Render(v core.View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.announced && v.Meeting.Title != "" {
		fmt.Fprintf(r.out, "== %s ==\n", v.Meeting.Title)
		r.announced = true
	}
	if v.Phase != r.phase {
		r.phase = v.Phase
		fmt.Fprintf(r.out, "-- %s\n", v.Phase)
	}

	for _, p := range v.Participants {
		was, seen := r.presence[p.ID]
		r.presence[p.ID] = p.Connected
		switch {
		case p.IsLocalUser:
		case p.Connected && (!seen || !was):
			fmt.Fprintf(r.out, "-- %s joined\n", r.o.DisplayName(p.ID))
		case !p.Connected && seen && was:
			fmt.Fprintf(r.out, "-- %s left\n", r.o.DisplayName(p.ID))
		}
	}

	// A snapshot replaces the log; anything past what was printed is new.
	if len(v.Messages) < r.printed {
		r.printed = 0
	}
	for _, m := range v.Messages[r.printed:] {
		fmt.Fprintf(r.out, "[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04"), r.o.AuthorName(m), m.Content)
	}
	r.printed = len(v.Messages)
}

func (r *renderer) Roster() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var b strings.Builder
	for _, p := range r.o.Participants() {
		mark := " "
		if p.Connected {
			mark = "*"
		}
		name := r.o.DisplayName(p.ID)
		if p.IsLocalUser {
			name += " (you)"
		}
		fmt.Fprintf(&b, " %s %s\n", mark, name)
	}
	fmt.Fprint(r.out, b.String())
}

func (r *renderer) Notice(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "-- "+format+"\n", args...)
}

func (r *renderer) Error(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "!! %v\n", err)
}
