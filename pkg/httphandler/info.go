package httphandler

import (
	"net/http"

	// Packages
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

// Path: /
func InfoHandler(manager *manager.Manager, limiter *ratelimit.Limiter) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/{$}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				info := manager.Info()
				if limiter != nil {
					n, window, cooldown := limiter.Limits()
					info.RateLimits = schema.RateLimits{
						MaxRequests:     n,
						WindowSeconds:   int(window.Seconds()),
						CooldownSeconds: cooldown.Seconds(),
					}
				}
				_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), info)
			default:
				methodNotAllowed(w, r)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Describe the service, backend and limits",
			},
		})
}

// Path: /health
func HealthHandler(manager *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/health", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), manager.Health())
			default:
				methodNotAllowed(w, r)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Report service health",
			},
		})
}
