// Package v1 assembles the /api/v1 HTTP surface
package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"flowforge-backend/infrastructure/config"
	"flowforge-backend/interfaces/http/rest/handlers"
	"flowforge-backend/interfaces/http/rest/middleware"
	"flowforge-backend/pkg/auth"
	"flowforge-backend/pkg/utils"
)

// RouterDeps bundles everything the router mounts
type RouterDeps struct {
	Config         *config.Config
	Logger         *zap.Logger
	Validator      *auth.JWTValidator
	FlowHandler    *handlers.FlowHandler
	NodeHandler    *handlers.NodeHandler
	EdgeHandler    *handlers.EdgeHandler
	VersionHandler *handlers.VersionHandler
	CommentHandler *handlers.CommentHandler
	SearchHandler  *handlers.SearchHandler
}

// NewRouter creates the v1 API router
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging(deps.Logger))

	if deps.Config.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", healthCheck)
	r.Get("/ready", healthCheck)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Authenticate(deps.Validator, deps.Config.IsDevelopment(), deps.Logger))

		api.Route("/flows", func(flows chi.Router) {
			flows.Get("/", deps.FlowHandler.ListFlows)

			flows.Route("/{flowID}", func(flow chi.Router) {
				flow.Get("/", deps.FlowHandler.GetFlow)
				flow.Put("/", deps.FlowHandler.UpdateFlow)
				flow.Delete("/", deps.FlowHandler.DeleteFlow)
				flow.Post("/reload", deps.FlowHandler.ReloadFlow)
				flow.Get("/export", deps.FlowHandler.ExportFlow)
				flow.Post("/import", deps.FlowHandler.ImportFlow)
				flow.Get("/validate", deps.FlowHandler.ValidateFlow)

				flow.Post("/nodes", deps.NodeHandler.AddNode)
				flow.Patch("/nodes/{nodeID}", deps.NodeHandler.UpdateNodeData)
				flow.Patch("/nodes/{nodeID}/style", deps.NodeHandler.UpdateNodeStyle)
				flow.Patch("/nodes/{nodeID}/position", deps.NodeHandler.MoveNode)
				flow.Delete("/nodes/{nodeID}", deps.NodeHandler.DeleteNode)
				flow.Post("/nodes/{nodeID}/select", deps.NodeHandler.SelectNode)

				flow.Post("/edges", deps.EdgeHandler.Connect)
				flow.Patch("/edges/{edgeID}", deps.EdgeHandler.UpdateEdge)
				flow.Delete("/edges/{edgeID}", deps.EdgeHandler.Disconnect)

				flow.Get("/versions", deps.VersionHandler.ListVersions)
				flow.Post("/versions", deps.VersionHandler.SaveVersion)
				flow.Post("/versions/{versionID}/restore", deps.VersionHandler.RestoreVersion)

				flow.Get("/comments", deps.CommentHandler.ListComments)
				flow.Get("/comments/counts", deps.CommentHandler.CommentCounts)
				flow.Post("/comments", deps.CommentHandler.AddComment)
				flow.Post("/comments/{commentID}/replies", deps.CommentHandler.AddReply)
				flow.Delete("/comments/{commentID}", deps.CommentHandler.DeleteComment)
				flow.Delete("/comments/{commentID}/replies/{replyID}", deps.CommentHandler.DeleteReply)
			})
		})

		api.Get("/search/nodes", deps.SearchHandler.SearchNodes)
		api.Get("/search/flows", deps.SearchHandler.SearchFlows)
		api.Get("/search/dnis", deps.SearchHandler.SearchByDNIS)
	})

	return r
}

// healthCheck provides a health check endpoint
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","version":"v1","time":"` + utils.NowRFC3339() + `"}`))
}
