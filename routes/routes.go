package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mcoleague/match-center/handlers"
	"github.com/mcoleague/match-center/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	matchHandler *handlers.MatchHandler,
	reportHandler *handlers.ReportHandler,
	matchCenterHandler *handlers.MatchCenterHandler,
	availabilityHandler *handlers.AvailabilityHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Get("/ws/matches/{matchID}", webSocketHandler.ServeMatch)

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetMatch)
		r.Get("/slots", matchHandler.AvailableSlots)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/schedule", matchHandler.Schedule)
			r.Post("/desempenho/preview", reportHandler.Preview)
			r.Post("/desempenho/confirm", reportHandler.Confirm)
			r.Post("/placar/confirmar", matchHandler.ConfirmScore)
			r.Post("/reclamacao", matchHandler.DisputeScore)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/reclamacao/resolver", matchHandler.ResolveDispute)
			})
		})
	})

	router.Route("/clubs/{clubID}", func(r chi.Router) {
		r.Get("/matches", matchHandler.ListClubMatches)
		r.Get("/match-center", matchCenterHandler.Summary)
		r.Get("/availability", availabilityHandler.ListClubAvailability)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/availability", availabilityHandler.CreateWindow)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Delete("/availability/{windowID}", availabilityHandler.DeleteWindow)
	})
}
