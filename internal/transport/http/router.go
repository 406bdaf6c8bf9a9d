package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"qquiz-service/internal/app"
)

// Services bundles the use cases the HTTP API exposes.
type Services struct {
	Quizzes     *app.QuizService
	Submissions *app.SubmissionService
	Users       UserLookup
	Tokens      TokenParser
}

// NewRouter mounts the REST API and the live results socket.
func NewRouter(svc Services) http.Handler {
	api := &API{quizzes: svc.Quizzes, submissions: svc.Submissions}
	ws := NewWSHandler(svc.Submissions)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Group(func(pr chi.Router) {
		pr.Use(Authenticate(svc.Tokens, svc.Users))
		timeout := middleware.Timeout(30 * time.Second)

		pr.With(timeout).Get("/quizzes", api.listQuizzes)
		pr.With(timeout).Post("/quizzes", api.createQuiz)
		pr.Route("/quizzes/{quizID}", func(qr chi.Router) {
			// the socket outlives any request timeout
			qr.Get("/results/live", ws.ServeWS)

			qr.Group(func(tr chi.Router) {
				tr.Use(timeout)
				tr.Get("/", api.getQuiz)
				tr.Put("/", api.updateQuiz)
				tr.Delete("/", api.deleteQuiz)
				tr.Post("/submissions", api.submit)
				tr.Get("/results", api.quizResults)
				tr.Get("/leaderboard", api.leaderboard)
			})
		})
		pr.With(timeout).Get("/me/results", api.myResults)
		pr.With(timeout).Get("/me/scores", api.myScores)
		pr.With(timeout).Get("/results/{resultID}", api.getResult)
	})
	return r
}
