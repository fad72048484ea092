// Package api exposes the HTTP surface of the rewards backend. It decodes
// request bodies, delegates to the pipeline services and translates the
// error taxonomy to HTTP statuses; no business rules live here.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/linkedpost/go-rewards/models"
	"github.com/linkedpost/go-rewards/services"
)

type Registrar interface {
	Register(ctx context.Context, req *services.RegistrationRequest) (*models.RegistrationResult, error)
}

type Submitter interface {
	Submit(ctx context.Context, req *services.SubmissionRequest) (*models.SubmissionResult, error)
}

type Announcer interface {
	Announce(ctx context.Context) (*models.AnnouncementResult, error)
}

type Server struct {
	registrar Registrar
	submitter Submitter
	announcer Announcer
	notifier  models.Notifier
	logger    models.Logger
}

func NewServer(registrar Registrar, submitter Submitter, announcer Announcer, notifier models.Notifier, logger models.Logger) *Server {
	return &Server{registrar, submitter, announcer, notifier, logger}
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/welcome", s.handleWelcome)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/register-user", s.handleRegisterUser)
	mux.HandleFunc("/submit-post", s.handleSubmitPost)
	mux.HandleFunc("/announce-result", s.handleAnnounceResult)
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the LinkedIn Post Rewards"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req := new(services.RegistrationRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.registrar.Register(r.Context(), req)
	if err != nil {
		s.respondError(r, w, "register-user", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubmitPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req := new(services.SubmissionRequest)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.submitter.Submit(r.Context(), req)
	if err != nil {
		s.respondError(r, w, "submit-post", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnnounceResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	result, err := s.announcer.Announce(r.Context())
	if err != nil {
		s.respondError(r, w, "announce-result", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// respondError logs the full cause and returns only the user-safe message.
// Upstream and oracle failures also raise an operator alert.
func (s *Server) respondError(r *http.Request, w http.ResponseWriter, route string, err error) {
	reqErr := models.AsRequestError(err)
	requestId := uuid.NewString()
	if reqErr.Status() >= http.StatusInternalServerError {
		s.logger.Errorf("%s: request %s failed: %v", route, requestId, err)
		if alertErr := s.notifier.SendAlert(models.ErrorTitle, route, err.Error()); alertErr != nil {
			s.logger.Errorf("%s: failed to send alert: %v", route, alertErr)
		}
	} else {
		s.logger.Infof("%s: request %s rejected: %v", route, requestId, err)
	}
	writeError(w, reqErr.Status(), reqErr.UserMessage())
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}
