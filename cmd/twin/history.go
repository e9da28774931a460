package main

import (
	"errors"
	"fmt"
	"os"

	// Packages
	table "github.com/dilettacal/digital-twin/pkg/ui/table"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type HistoryCommand struct {
	Session string `arg:"" help:"Session (defaults to the last one)" optional:""`
}

type SessionsCommand struct{}

type HealthCommand struct{}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *HistoryCommand) Run(g *Globals) error {
	client, err := g.client()
	if err != nil {
		return err
	}

	session := cmd.Session
	if session == "" {
		state, err := g.state()
		if err != nil {
			return err
		}
		if session = state.Session(g.Endpoint); session == "" {
			return errors.New("no session given and none used before")
		}
	}

	response, err := client.GetConversation(g.ctx, session)
	if err != nil {
		return errors.New(errorDetail(err))
	}
	if len(response.Messages) == 0 {
		fmt.Fprintln(os.Stderr, "No messages in session", session)
		return nil
	}
	fmt.Println(table.Render(table.Messages(response.Messages), terminalWidth(os.Stdout)))
	return nil
}

func (cmd *SessionsCommand) Run(g *Globals) error {
	client, err := g.client()
	if err != nil {
		return err
	}
	sessions, err := client.Sessions(g.ctx)
	if err != nil {
		return errors.New(errorDetail(err))
	}
	fmt.Println(table.Render(table.Sessions(sessions), terminalWidth(os.Stdout)))
	return nil
}

func (cmd *HealthCommand) Run(g *Globals) error {
	client, err := g.client()
	if err != nil {
		return err
	}
	health, err := client.Health(g.ctx)
	if err != nil {
		return errors.New(errorDetail(err))
	}
	fmt.Println(health)
	return nil
}
