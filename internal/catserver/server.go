// Package catserver is a thin HTTP front door over the engine: bearer
// auth and CORS in front of one multicat.Reviewer per examinee, with a
// proctor-PIN-gated endpoint for inspecting review flags. The engine
// core never imports this package.
package catserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/adaptivecat/engine/internal/cat"
	"github.com/adaptivecat/engine/internal/multicat"
)

// examineeSession pairs one examinee's reviewer with the last review
// flags an early-stopping call produced for each construct (nil until
// one fires).
type examineeSession struct {
	reviewer  *multicat.Reviewer
	lastFlags map[string]map[string]multicat.ReviewFlag // cat -> (construct -> flag)
}

// Server holds one examineeSession per examinee, registered ad hoc on
// first contact, and gates review access behind a single shared
// proctor PIN.
type Server struct {
	mu       sync.Mutex
	sessions map[string]*examineeSession

	sessionOpts     map[string]cat.CatOptions
	corpus          []multicat.Stimulus
	proctorPINHash  string
	reviewTolerance float64
}

func NewServer(corpus []multicat.Stimulus, sessionOpts map[string]cat.CatOptions, proctorPINHash string) *Server {
	return &Server{
		sessions:       make(map[string]*examineeSession),
		sessionOpts:    sessionOpts,
		corpus:         corpus,
		proctorPINHash: proctorPINHash,
	}
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/v1").Subrouter()

	api.HandleFunc("/sessions/register", s.handleRegister).Methods("POST")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/sessions/{cat}/next", s.handleNext).Methods("GET")
	protected.HandleFunc("/sessions/{cat}/update", s.handleUpdate).Methods("POST")
	protected.HandleFunc("/sessions/{cat}/review", s.handleReview).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	return c.Handler(r)
}

type registerResponse struct {
	Token      string `json:"token"`
	ExamineeID string `json:"examinee_id"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExamineeID string `json:"examinee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExamineeID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "examinee_id is required"})
		return
	}

	s.mu.Lock()
	if _, ok := s.sessions[req.ExamineeID]; !ok {
		ctrl, err := multicat.NewController(s.corpus, s.sessionOpts, nil, 0)
		if err != nil {
			s.mu.Unlock()
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to start session"})
			return
		}
		s.sessions[req.ExamineeID] = &examineeSession{
			reviewer:  multicat.NewReviewer(ctrl, s.reviewTolerance),
			lastFlags: make(map[string]map[string]multicat.ReviewFlag),
		}
	}
	s.mu.Unlock()

	token, err := generateToken(req.ExamineeID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to issue token"})
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{Token: token, ExamineeID: req.ExamineeID})
}

type nextResponse struct {
	Stimulus       *multicat.Stimulus `json:"stimulus,omitempty"`
	StoppingReason string              `json:"stopping_reason,omitempty"`
	Thetas         map[string]float64  `json:"thetas"`
	SEs            map[string]float64  `json:"standard_errors"`
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	catName := mux.Vars(r)["cat"]
	sess, err := s.sessionFor(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	state, stimulus, flags, err := sess.reviewer.UpdateAndSelect(multicat.UpdateAndSelectOptions{CatToSelect: catName})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.recordFlags(sess, catName, flags)

	writeJSON(w, http.StatusOK, nextResponse{
		Stimulus:       stimulus,
		StoppingReason: state.StoppingReason,
		Thetas:         state.Thetas,
		SEs:            state.SEs,
	})
}

type updateRequest struct {
	Items   []multicat.Stimulus `json:"items"`
	Answers []int                `json:"answers"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	catName := mux.Vars(r)["cat"]
	sess, err := s.sessionFor(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	state, stimulus, flags, err := sess.reviewer.UpdateAndSelect(multicat.UpdateAndSelectOptions{
		CatToSelect:  catName,
		CatsToUpdate: []string{catName},
		Items:        req.Items,
		Answers:      req.Answers,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	s.recordFlags(sess, catName, flags)

	writeJSON(w, http.StatusOK, nextResponse{
		Stimulus:       stimulus,
		StoppingReason: state.StoppingReason,
		Thetas:         state.Thetas,
		SEs:            state.SEs,
	})
}

// reviewResponse reports whether a construct's early stop is clean
// enough to accept, gated behind a correct proctor PIN.
type reviewResponse struct {
	Flags map[string]multicat.ReviewFlag `json:"flags,omitempty"`
}

// handleReview verifies the proctor PIN carried in the request body
// before releasing the review flags recorded for catName the last time
// early stopping fired. A wrong or missing PIN never reveals whether a
// session is pending review at all.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	catName := mux.Vars(r)["cat"]
	sess, err := s.sessionFor(r.Context())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := VerifyProctorPIN(s.proctorPINHash, req.PIN); err != nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "incorrect proctor pin"})
		return
	}

	s.mu.Lock()
	flags := sess.lastFlags[catName]
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, reviewResponse{Flags: flags})
}

func (s *Server) recordFlags(sess *examineeSession, catName string, flags map[string]multicat.ReviewFlag) {
	if flags == nil {
		return
	}
	s.mu.Lock()
	sess.lastFlags[catName] = flags
	s.mu.Unlock()
}

func (s *Server) sessionFor(ctx context.Context) (*examineeSession, error) {
	examineeID, ok := examineeIDFrom(ctx)
	if !ok {
		return nil, fmt.Errorf("no examinee on request context")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[examineeID]
	if !ok {
		return nil, fmt.Errorf("no session registered for examinee %q", examineeID)
	}
	return sess, nil
}

func withExamineeID(ctx context.Context, examineeID string) context.Context {
	return context.WithValue(ctx, examineeIDKey{}, examineeID)
}

func examineeIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(examineeIDKey{}).(string)
	return v, ok
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
