package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/history-contest/internal/auth/middleware"
	"github.com/mind-engage/history-contest/internal/contest"
	"github.com/mind-engage/history-contest/internal/exam"
	"github.com/mind-engage/history-contest/internal/rbac"
)

// Contest is the exam core as seen by the HTTP layer.
type Contest interface {
	GetState(ctx context.Context, studentID string) (exam.TestState, error)
	Initialize(ctx context.Context, studentID string) (contest.InitResult, error)
	Reset(ctx context.Context, studentID string) (contest.InitResult, error)
	Resume(ctx context.Context, studentID string) (contest.InitResult, error)
	Submit(ctx context.Context, studentID string, answers []exam.SubmittedAnswer) (exam.Result, error)
	GetResult(ctx context.Context, studentID string) (exam.Result, error)
	Questions(ctx context.Context, studentID string) ([]exam.QuestionView, error)
	Answers(ctx context.Context, studentID string) ([]exam.CorrectAnswer, error)
	Answer(ctx context.Context, questionID int) (exam.CorrectAnswer, error)
}

var errNoIdentity = errors.New("no authenticated student")

func studentID(r *http.Request) (string, error) {
	sub := authmw.SubjectFromContext(r.Context())
	if sub == "" {
		return "", errNoIdentity
	}
	return sub, nil
}

// MountContest registers the exam routes on r. Identity and role must already be
// in the request context. Behind JWTMiddleware an anonymous caller is answered
// 401 before reaching a handler; the 400 for a missing subject only applies when
// the routes are mounted without it.
func MountContest(r chi.Router, svc Contest, testTime time.Duration) {
	r.With(rbac.Require("state:view")).Get("/Student/State", GetStateHandler(svc, testTime))
	r.With(rbac.Require("state:change")).Post("/Student/State/Initialize", TransitionHandler(svc.Initialize))
	r.With(rbac.Require("state:change")).Post("/Student/State/Reset", TransitionHandler(svc.Reset))
	r.With(rbac.Require("state:change")).Post("/Student/State/Resume", TransitionHandler(svc.Resume))

	r.With(rbac.Require("question:view")).Get("/Question", QuestionsHandler(svc))

	r.With(rbac.Require("result:submit")).Post("/Result", SubmitHandler(svc))
	r.With(rbac.RequireAny("result:view-own", "result:view-all")).Get("/Result", GetResultHandler(svc))
	r.With(rbac.RequireAny("answer:view-own", "answer:view-all")).Get("/Result/Answer", AnswersHandler(svc))
	r.With(rbac.RequireAny("answer:view-own", "answer:view-all")).Get("/Result/Answer/{id}", AnswerHandler(svc))
	r.With(rbac.RequireOwnerOr("result:view-all", ownsResult)).Get("/Result/{id}", GetResultHandler(svc))
}

func ownsResult(r *http.Request) bool {
	sub := authmw.SubjectFromContext(r.Context())
	return sub != "" && chi.URLParam(r, "id") == sub
}

// GET /api/Student/State
func GetStateHandler(svc Contest, testTime time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := studentID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		st, err := svc.GetState(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"testState":       int(st),
			"testTimeSeconds": int(testTime.Seconds()),
		})
	}
}

// POST /api/Student/State/{Initialize,Reset,Resume}
func TransitionHandler(op func(ctx context.Context, studentID string) (contest.InitResult, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := studentID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := op(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// GET /api/Question
func QuestionsHandler(svc Contest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := studentID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		qs, err := svc.Questions(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, qs)
	}
}

// POST /api/Result  [ {"id": 1, "answer": 2}, ... ]
func SubmitHandler(svc Contest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := studentID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		var answers []exam.SubmittedAnswer
		if err := json.NewDecoder(r.Body).Decode(&answers); err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Detail: "bad json"})
			return
		}
		res, err := svc.Submit(r.Context(), id, answers)
		if err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// GET /api/Result and /api/Result/{id}
// Without an id the caller's own result is returned. Access to other ids is
// checked by the route.
func GetResultHandler(svc Contest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := chi.URLParam(r, "id")
		if target == "" {
			id, err := studentID(r)
			if err != nil {
				writeError(w, err)
				return
			}
			target = id
		}
		res, err := svc.GetResult(r.Context(), target)
		if err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// GET /api/Result/Answer
func AnswersHandler(svc Contest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := studentID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		list, err := svc.Answers(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// GET /api/Result/Answer/{id}
func AnswerHandler(svc Contest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qid, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Detail: "question id must be a number"})
			return
		}
		a, err := svc.Answer(r.Context(), qid)
		if err != nil {
			writeError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, a)
	}
}
