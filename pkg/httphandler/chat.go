package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	// Packages
	twin "github.com/dilettacal/digital-twin"
	manager "github.com/dilettacal/digital-twin/pkg/manager"
	ratelimit "github.com/dilettacal/digital-twin/pkg/ratelimit"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /chat
func ChatHandler(manager *manager.Manager, limiter *ratelimit.Limiter) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/chat", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				var req schema.ChatRequest
				if err := httprequest.Read(r, &req); err != nil {
					writeDetail(w, r, http.StatusBadRequest, "Invalid request body.")
					return
				}

				// Rate limit by session, or by client address
				if limiter != nil {
					if ok, detail := limiter.Allow(ratelimit.ClientIdentifier(r.Header, req.SessionID)); !ok {
						writeDetail(w, r, http.StatusTooManyRequests, detail)
						return
					}
				}

				// Validate before committing to a response format
				req, err := manager.Validate(req)
				if err != nil {
					writeError(w, r, err)
					return
				}

				// Check Accept header for streaming vs JSON
				switch acceptType(r) {
				case acceptStream:
					chatStream(w, r, manager, req)
				case acceptJSON:
					chatJSON(w, r, manager, req)
				default:
					writeDetail(w, r, http.StatusNotAcceptable, "Unsupported Accept header.")
				}
			default:
				methodNotAllowed(w, r)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Send a message within a session and get a response, streamed as server-sent events when requested",
			},
		})
}

// chatJSON sends the chat response as a single JSON object.
func chatJSON(w http.ResponseWriter, r *http.Request, manager *manager.Manager, req schema.ChatRequest) {
	resp, err := manager.Chat(r.Context(), req, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), resp)
}

// chatStream sends the chat response as a text/event-stream: one session
// event, a token event per delta, and then either a done or an error event.
func chatStream(w http.ResponseWriter, r *http.Request, manager *manager.Manager, req schema.ChatRequest) {
	stream := httpresponse.NewTextStream(w)
	if stream == nil {
		writeError(w, r, twin.ErrInternalServerError.With("streaming not supported"))
		return
	}
	defer stream.Close()

	stream.Write(schema.EventSession, schema.StreamSession{SessionID: req.SessionID})
	resp, err := manager.Chat(r.Context(), req, func(delta string) {
		stream.Write(schema.EventToken, schema.StreamToken{Delta: delta})
	})
	if err != nil {
		if r.Context().Err() != nil {
			slog.DebugContext(r.Context(), "client went away", "session", req.SessionID, "error", err)
			return
		}
		if !errors.Is(err, twin.ErrBadParameter) {
			slog.ErrorContext(r.Context(), "chat failed", "session", req.SessionID, "error", err)
		}
		stream.Write(schema.EventError, schema.StreamError{Detail: twin.Detail(err)})
		return
	}

	// Send the final complete response
	stream.Write(schema.EventDone, schema.StreamDone{Response: resp.Response})
}

// acceptKind classifies the negotiated response format.
type acceptKind int

const (
	acceptJSON        acceptKind = iota // application/json (or no Accept header)
	acceptStream                        // text/event-stream
	acceptUnsupported                   // unsupported media type
)

// acceptType inspects the Accept header and returns the negotiated format.
// A stream is preferred whenever text/event-stream is listed, and no Accept
// header defaults to JSON.
func acceptType(r *http.Request) acceptKind {
	header := r.Header.Get("Accept")
	if header == "" {
		return acceptJSON
	}
	result := acceptUnsupported
	for _, part := range strings.Split(header, ",") {
		mt := strings.TrimSpace(part)
		// Strip quality parameters (e.g. ";q=0.9")
		if idx := strings.IndexByte(mt, ';'); idx >= 0 {
			mt = strings.TrimSpace(mt[:idx])
		}
		switch mt {
		case "text/event-stream":
			return acceptStream
		case "application/json", "application/*", "*/*":
			result = acceptJSON
		}
	}
	return result
}
