package routes

import (
	"net/http"

	"github.com/Dosada05/tournament-engine/docs"
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Metrics        http.Handler
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", handlers.HealthHandler)
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics)
	}

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.SwaggerJSON)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	organizer := middleware.Authorize(middleware.RoleOrganizer)
	scorekeeper := middleware.Authorize(middleware.RoleOrganizer, middleware.RoleScorekeeper)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.ListHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.JWTSecret))
			r.Use(organizer)
			r.Post("/", tournamentHandler.CreateHandler)
		})

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetByIDHandler)
			r.Get("/standings", tournamentHandler.StandingsHandler)
			r.Get("/matches", matchHandler.ListHandler)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authenticate(opts.JWTSecret))

				r.With(organizer).Post("/teams", tournamentHandler.AddTeamHandler)
				r.With(organizer).Post("/start", tournamentHandler.StartHandler)
				r.With(organizer).Post("/advance", tournamentHandler.AdvanceHandler)
				r.With(organizer).Post("/archive", tournamentHandler.ArchiveHandler)

				r.Route("/matches/{matchID}", func(r chi.Router) {
					r.With(scorekeeper).Post("/points", matchHandler.RecordPointHandler)
					r.With(scorekeeper).Post("/undo", matchHandler.UndoPointHandler)
					r.With(scorekeeper).Post("/sets", matchHandler.StartSetHandler)
					r.With(organizer).Post("/walkover", matchHandler.WalkoverHandler)
					r.With(organizer).Put("/court", matchHandler.AssignCourtHandler)
				})
			})
		})
	})
}
