package http

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"qquiz-service/internal/app"
	"qquiz-service/internal/grading"
)

const maxBodyBytes = 1 << 20

// API holds the REST handlers.
type API struct {
	quizzes     *app.QuizService
	submissions *app.SubmissionService
}

func (a *API) listQuizzes(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	quizzes, err := a.quizzes.ListQuizzes(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (a *API) createQuiz(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var draft app.QuizDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	quiz, err := a.quizzes.CreateQuiz(r.Context(), actor, draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newQuizView(quiz, true))
}

func (a *API) getQuiz(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	quiz, err := a.quizzes.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	reveal := app.AssertOwner(quiz, actor) == nil
	writeJSON(w, http.StatusOK, newQuizView(quiz, reveal))
}

func (a *API) updateQuiz(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var draft app.QuizDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	quiz, err := a.quizzes.UpdateQuiz(r.Context(), actor, chi.URLParam(r, "quizID"), draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newQuizView(quiz, true))
}

func (a *API) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	if err := a.quizzes.DeleteQuiz(r.Context(), actor, chi.URLParam(r, "quizID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submissionBody struct {
	Answers map[string]string `json:"answers"`
}

// submit accepts either a form post with question_<id> fields or a JSON body
// keyed by question ID.
func (a *API) submit(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	raw, ok := submissionFields(w, r)
	if !ok {
		return
	}
	result, err := a.submissions.Submit(r.Context(), actor, chi.URLParam(r, "quizID"), raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newResultView(result))
}

func submissionFields(w http.ResponseWriter, r *http.Request) (map[string]string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body submissionBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid submission body")
			return nil, false
		}
		raw := make(map[string]string, len(body.Answers))
		for questionID, choiceID := range body.Answers {
			raw[grading.FieldName(questionID)] = choiceID
		}
		return raw, true
	}

	if err := r.ParseForm(); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid form")
		return nil, false
	}
	raw := make(map[string]string, len(r.PostForm))
	for name, values := range r.PostForm {
		if len(values) > 0 {
			raw[name] = values[0]
		}
	}
	return raw, true
}

func (a *API) quizResults(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	results, err := a.submissions.QuizResults(r.Context(), actor, chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultViews(results))
}

func (a *API) leaderboard(w http.ResponseWriter, r *http.Request) {
	summaries, err := a.submissions.Leaderboard(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newScoreViews(summaries, true))
}

func (a *API) myResults(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	results, err := a.submissions.MyResults(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultViews(results))
}

func (a *API) myScores(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	summaries, err := a.submissions.MyScores(r.Context(), actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newScoreViews(summaries, false))
}

func (a *API) getResult(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	result, err := a.submissions.Result(r.Context(), actor, chi.URLParam(r, "resultID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newResultView(result))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}
