package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/opendraw/draw-engine/handlers"
	"github.com/opendraw/draw-engine/middleware"
)

// SetupRoutes wires the HTTP surface. Reads and the websocket feed are
// public; every mutation sits behind the operator token.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	leagueHandler *handlers.LeagueHandler,
	mediaHandler *handlers.MediaHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/token", authHandler.IssueToken)

	router.Route("/events/{eventID}/categories/{categoryID}", func(r chi.Router) {
		// Public read surface.
		r.Get("/bracket", bracketHandler.Get)
		r.Get("/league", leagueHandler.Get)
		r.Get("/league/fixtures", leagueHandler.ListFixtures)
		r.Get("/league/standings", leagueHandler.Standings)
		r.Get("/ws", webSocketHandler.Serve)

		// Operator mutations.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/bracket", bracketHandler.Generate)
			r.Delete("/bracket", bracketHandler.Delete)
			r.Post("/bracket/publish", bracketHandler.Publish)
			r.Post("/bracket/unpublish", bracketHandler.Unpublish)
			r.Post("/bracket/rounds", bracketHandler.AppendRound)
			r.Post("/bracket/resync", bracketHandler.Resync)
			r.Post("/bracket/reset", bracketHandler.Reset)
			r.Post("/bracket/byes/reshuffle", bracketHandler.ReshuffleByes)
			r.Post("/bracket/byes/assign", bracketHandler.AssignBye)
			r.Post("/bracket/byes/finalize", bracketHandler.FinalizeByes)

			r.Post("/matches/{matchID}/result", matchHandler.RecordResult)
			r.Delete("/matches/{matchID}/result", matchHandler.ClearResult)

			r.Put("/league", leagueHandler.Upsert)
			r.Delete("/league", leagueHandler.Delete)
			r.Post("/league/fixtures", leagueHandler.GenerateFixtures)
			r.Post("/league/fixtures/{fixtureID}/result", leagueHandler.RecordResult)

			r.Put("/draw-image", mediaHandler.UploadDraw)
			r.Delete("/draw-image", mediaHandler.DeleteDraw)
		})
	})
}
