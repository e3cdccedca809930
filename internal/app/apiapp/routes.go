package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Evzheva/chatbot-for-dating/internal/transport/http/handlers"
)

type Dependencies struct {
	Postgres   handlers.Pinger
	Tokens     TokenValidator
	Moderation handlers.ModerationService
	Actions    handlers.ActionLister
	Logger     *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.Postgres)
	adminHandler := handlers.NewAdminHandler(deps.Moderation, deps.Actions, deps.Logger)

	r.Get("/health", healthHandler.Health)

	r.Route("/admin", func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Tokens, deps.Logger))

		r.Get("/stats", adminHandler.Stats)
		r.Get("/actions", adminHandler.RecentActions)
		r.Get("/moderation/next", adminHandler.NextProfile)
		r.Post("/moderation/{id}/decision", adminHandler.DecideProfile)
		r.Get("/reports/next", adminHandler.NextReport)
		r.Post("/reports/{id}/decision", adminHandler.DecideReport)
	})
}
