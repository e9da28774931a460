package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"

	// Packages
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// SendOpt is a functional option for the Send method
type SendOpt func(*sendOptions)

type sendOptions struct {
	accept string
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	acceptAny  = client.ContentTypeJson + ", " + client.ContentTypeTextStream
	acceptJSON = client.ContentTypeJson
)

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithoutStream asks the server for a one-shot JSON reply only
func WithoutStream() SendOpt {
	return func(o *sendOptions) {
		o.accept = acceptJSON
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Send posts one message and returns the reply in whichever shape the
// server chose. The session identifier is omitted from the request when
// empty. Exactly one request is made; there are no retries.
//
// A failure before a response arrives returns *TransportError, and a
// non-success status returns *ApplicationError. The message is not
// validated here.
func (c *Client) Send(ctx context.Context, message, sessionID string, opts ...SendOpt) (Exchange, error) {
	o := sendOptions{accept: acceptAny}
	for _, opt := range opts {
		opt(&o)
	}

	// Create request
	body, err := json.Marshal(schema.ChatRequest{
		Message:   message,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("chat"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", client.ContentTypeJson)
	req.Header.Set("Accept", o.accept)

	// Perform request
	resp, err := c.streamClient().Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	// Non-success status
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newApplicationError(resp.StatusCode, data)
	}

	// Negotiate the shape of the reply, once, from the content type
	if isTextStream(resp.Header.Get("Content-Type")) {
		return &Streaming{Body: resp.Body}, nil
	}

	defer resp.Body.Close()
	var oneshot OneShot
	if err := json.NewDecoder(resp.Body).Decode(&oneshot.Response); err != nil {
		return nil, &TransportError{Err: err}
	}
	return &oneshot, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func isTextStream(contentType string) bool {
	mediatype, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediatype == client.ContentTypeTextStream
}
