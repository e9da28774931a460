package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	// Packages
	httpclient "github.com/dilettacal/digital-twin/pkg/httpclient"
	sse "github.com/dilettacal/digital-twin/pkg/sse"
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// client returns a chat service client for the configured endpoint
func (g *Globals) client() (*httpclient.Client, error) {
	return httpclient.New(g.Endpoint, g.clientOpts()...)
}

// conversation starts a conversation, resuming a session when one is given
func (g *Globals) conversation(client *httpclient.Client, session string, noStream bool) (*httpclient.Conversation, error) {
	opts := []httpclient.ConversationOpt{
		httpclient.WithStreamOpts(sse.WithLogger(g.logger)),
	}
	if session != "" {
		opts = append(opts, httpclient.WithSessionID(session))
	}
	if noStream {
		opts = append(opts, httpclient.WithSendOpts(httpclient.WithoutStream()))
	}
	return client.NewConversation(opts...)
}

// errorDetail returns the text to show for a failed turn
func errorDetail(err error) string {
	var appErr *httpclient.ApplicationError
	var transportErr *httpclient.TransportError
	switch {
	case errors.As(err, &appErr):
		return appErr.Detail
	case errors.As(err, &transportErr):
		return fmt.Sprint("cannot reach the chat service: ", transportErr.Err)
	default:
		return err.Error()
	}
}

// readLines delivers lines from r until end of input or cancellation
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case ch <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of the terminal, or zero
func terminalWidth(f *os.File) int {
	if !isTerminal(f) {
		return 0
	}
	if w, _, err := term.GetSize(int(f.Fd())); err == nil {
		return w
	}
	return 0
}
