package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/jobtrack/internal/dashboard"
	"github.com/jonathan/jobtrack/internal/form"
	"github.com/jonathan/jobtrack/internal/metrics"
	"github.com/jonathan/jobtrack/internal/server/middleware"
	"github.com/jonathan/jobtrack/internal/types"
)

// productName is shown on the home page.
const productName = "JobTracker"

type homeResponse struct {
	Name    string      `json:"name"`
	Tagline string      `json:"tagline"`
	User    *types.User `json:"user"`
}

// handleHome describes the service and, when signed in, the current user.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	resp := homeResponse{
		Name:    productName,
		Tagline: "Track every job application in one place",
	}
	if sess, err := middleware.GetSession(r); err == nil {
		user := sess.User
		resp.User = &user
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNotFound answers every unknown route.
func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusNotFound, map[string]string{"error": "page not found"})
}

// handleLogin signs a user in with the stub authenticator.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	resp, err := s.auth.Login(r.Context(), req)
	if err != nil {
		result := metrics.LoginError
		var validation *form.ValidationError
		if errors.As(err, &validation) {
			result = metrics.LoginInvalid
		}
		s.metrics.Login(result, s.auth.Sessions().Len())
		s.errorResponse(w, err)
		return
	}

	s.metrics.Login(metrics.LoginSuccess, s.auth.Sessions().Len())
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleLogout closes the caller's session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.GetSession(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if err := s.auth.Logout(sess); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.metrics.SetSessions(s.auth.Sessions().Len())
	w.WriteHeader(http.StatusNoContent)
}

// handleDashboard returns the headline stats and recent applications.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, err := middleware.GetSession(r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	user := sess.User
	s.jsonResponse(w, http.StatusOK, dashboard.Build(&user, s.store.List()))
}
