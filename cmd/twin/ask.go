package main

import (
	"errors"
	"fmt"
	"os"

	// Packages
	markdown "github.com/dilettacal/digital-twin/pkg/ui/markdown"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type AskCommand struct {
	Message  string `arg:"" help:"Message text"`
	Session  string `name:"session" help:"Session to continue" optional:""`
	NoStream bool   `name:"no-stream" help:"Ask for a complete reply instead of a stream"`
	Markdown bool   `name:"markdown" negatable:"" default:"true" help:"Render the reply as markdown on a terminal"`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *AskCommand) Run(g *Globals) error {
	client, err := g.client()
	if err != nil {
		return err
	}
	conversation, err := g.conversation(client, cmd.Session, cmd.NoStream)
	if err != nil {
		return err
	}

	// Markdown is only rendered for complete replies on a terminal
	live := isTerminal(os.Stdout)
	var md *markdown.Renderer
	if live && cmd.Markdown && cmd.NoStream {
		if md, err = markdown.New(markdown.WithWidth(max(terminalWidth(os.Stdout)-2, 20))); err != nil {
			return err
		}
	}

	outcome, err := conversation.Turn(g.ctx, cmd.Message, newTurnWriter(os.Stdout, live, md))
	if err != nil {
		return errors.New(errorDetail(err))
	}
	if outcome.Err != nil {
		return outcome.Err
	}

	// Print the session so the conversation can be continued
	if id := conversation.SessionID(); id != "" {
		fmt.Fprintln(os.Stderr, "session:", id)
	}
	return nil
}
