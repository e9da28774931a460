package httphandler

import (
	"errors"
	"log/slog"
	"net/http"

	// Package
	twin "github.com/dilettacal/digital-twin"
	manager "github.com/dilettacal/digital-twin/pkg/manager"
	ratelimit "github.com/dilettacal/digital-twin/pkg/ratelimit"
	schema "github.com/dilettacal/digital-twin/pkg/schema"
	server "github.com/mutablelogic/go-server"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Router interface {
	RegisterFunc(path string, handler http.HandlerFunc, middleware bool, spec *openapi.PathItem) error
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// RegisterHandlers registers the chat service on a router. The limiter may be
// nil, in which case requests are not rate limited.
func RegisterHandlers(manager *manager.Manager, limiter *ratelimit.Limiter, router server.HTTPRouter, middleware bool) error {
	var result error

	// Convenience function to register a handler and accumulate any errors
	register := func(path string, handler http.HandlerFunc, spec *openapi.PathItem) {
		result = errors.Join(result, router.(Router).RegisterFunc(path, handler, middleware, spec))
	}

	// Register handlers
	register(InfoHandler(manager, limiter))
	register(HealthHandler(manager))
	register(ChatHandler(manager, limiter))
	register(ConversationListHandler(manager))
	register(ConversationGetHandler(manager))

	// Return any errors
	return result
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// httpStatus maps a twin.Err to a response status. Unknown errors map to 500.
func httpStatus(err error) int {
	var code twin.Err
	if !errors.As(err, &code) {
		return http.StatusInternalServerError
	}
	switch code {
	case twin.ErrNotFound:
		return http.StatusNotFound
	case twin.ErrBadParameter:
		return http.StatusBadRequest
	case twin.ErrForbidden:
		return http.StatusForbidden
	case twin.ErrRateLimited:
		return http.StatusTooManyRequests
	case twin.ErrNotImplemented:
		return http.StatusNotImplemented
	case twin.ErrUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with a {"detail": ...} body
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeDetail(w, r, status, twin.Detail(err))
}

func writeDetail(w http.ResponseWriter, r *http.Request, status int, detail string) {
	_ = httpresponse.JSON(w, status, httprequest.Indent(r), schema.ErrorResponse{
		Detail: detail,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeDetail(w, r, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed")
}
