package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.provider != nil {
		if v := a.provider.View(); v.User != nil {
			s = v.User.Email + " "
		}
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", strings.TrimSpace(s))
	}
	return s
}

// Root starts the background session machinery and runs the REPL on the
// app's input reader.
// ctx must carry the provider.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to admagic CLI (type 'help' for commands)")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.WatchSession(ctx)
	a.tracker.Mount(ctx)
	go a.StartSessionWatcher(ctx, a.config.RevalidateInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
