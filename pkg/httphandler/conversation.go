package httphandler

import (
	"net/http"

	// Packages
	manager "github.com/dilettacal/digital-twin/pkg/manager"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /conversation
func ConversationListHandler(manager *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/conversation", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				sessions, err := manager.Sessions(r.Context())
				if err != nil {
					writeError(w, r, err)
					return
				}
				_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), sessions)
			default:
				methodNotAllowed(w, r)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "List stored sessions",
			},
		})
}

// Path: /conversation/{session}
func ConversationGetHandler(manager *manager.Manager) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/conversation/{session}", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				resp, err := manager.Conversation(r.Context(), r.PathValue("session"))
				if err != nil {
					writeError(w, r, err)
					return
				}
				_ = httpresponse.JSON(w, http.StatusOK, httprequest.Indent(r), resp)
			default:
				methodNotAllowed(w, r)
			}
		}, types.Ptr(openapi.PathItem{
			Get: &openapi.Operation{
				Description: "Get the stored messages of a session",
			},
		})
}
