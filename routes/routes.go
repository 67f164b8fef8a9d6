package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/freddywood17/team-racing-app/handlers"
	"github.com/freddywood17/team-racing-app/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	competitionHandler *handlers.CompetitionHandler,
	teamHandler *handlers.TeamHandler,
	draftHandler *handlers.DraftHandler,
	submissionHandler *handlers.SubmissionHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	resultHandler *handlers.ResultHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Device-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", authHandler.Login)

	router.Route("/competitions/{competitionID}", func(r chi.Router) {
		r.Get("/", competitionHandler.GetCompetition)
		r.Get("/matches", competitionHandler.ListMatches)
		r.Get("/teams", teamHandler.ListTeams)
		r.Post("/team-selection", teamHandler.SelectTeam)

		r.Get("/draft", draftHandler.GetDraft)
		r.Put("/draft", draftHandler.SavePick)
		r.Delete("/draft", draftHandler.ClearDraft)

		r.Post("/submissions", submissionHandler.Submit)
		r.Get("/submissions", submissionHandler.ListSubmissions)
		r.Get("/submissions/mine", submissionHandler.MySubmission)

		r.Get("/leaderboard", leaderboardHandler.GetLeaderboard)
		r.Get("/results", resultHandler.GetResults)

		// Только для администратора: ввод результатов и сброс.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate([]byte(jwtSecret)))
			r.Use(middleware.RequireAdmin)

			r.Post("/results", resultHandler.RecordResult)
			r.Post("/reset", submissionHandler.Reset)
		})
	})

	router.Get("/ws/competitions/{competitionID}", webSocketHandler.ServeWs)
}
