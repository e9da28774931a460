package main

import (
	"fmt"
	"os"
	"strings"

	// Packages
	markdown "github.com/dilettacal/digital-twin/pkg/ui/markdown"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ChatCommand struct {
	Session  string `name:"session" help:"Session to resume (defaults to the last one)" optional:""`
	New      bool   `name:"new" help:"Start a new session"`
	NoStream bool   `name:"no-stream" help:"Ask for complete replies instead of a stream"`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ChatCommand) Run(g *Globals) error {
	client, err := g.client()
	if err != nil {
		return err
	}
	state, err := g.state()
	if err != nil {
		return err
	}

	// Determine session: explicit flag > last used
	session := cmd.Session
	if session == "" && !cmd.New {
		session = state.Session(g.Endpoint)
	}
	conversation, err := g.conversation(client, session, cmd.NoStream)
	if err != nil {
		return err
	}

	// Query the terminal before reading any input
	live := isTerminal(os.Stdout)
	var md *markdown.Renderer
	if live {
		if md, err = markdown.New(markdown.WithWidth(max(terminalWidth(os.Stdout)-2, 20))); err != nil {
			g.logger.Debug("markdown disabled", "error", err)
		}
	}

	if session != "" {
		fmt.Fprintf(os.Stderr, "Resuming session %s (/new to start over, /quit to exit)\n", session)
	} else {
		fmt.Fprintln(os.Stderr, "New session (/new to start over, /quit to exit)")
	}

	lines := readLines(g.ctx, os.Stdin)
	for {
		if live {
			fmt.Fprint(os.Stdout, "> ")
		}

		var line string
		select {
		case <-g.ctx.Done():
			return nil
		case text, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(text)
		}

		// Commands
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/new":
			if conversation, err = g.conversation(client, "", cmd.NoStream); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "New session")
			continue
		}

		// One turn
		if _, err := conversation.Turn(g.ctx, line, newTurnWriter(os.Stdout, live, md)); err != nil {
			if g.ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(os.Stderr, "error:", errorDetail(err))
			continue
		}

		// Remember the session for next time
		if id := conversation.SessionID(); id != "" {
			if err := state.SetSession(g.Endpoint, id); err != nil {
				g.logger.Warn("unable to save session", "error", err)
			}
		}
	}
}
