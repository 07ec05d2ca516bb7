package http

import (
	"errors"
	"log/slog"
	"net/http"

	"moneta/internal/identity"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if s.identity == nil {
		ErrorResponse(http.StatusServiceUnavailable, "Accounts are not enabled").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")

	if err := s.identity.Register(r.Context(), username, password); err != nil {
		switch {
		case errors.Is(err, identity.ErrDuplicateUser):
			ErrorResponse(http.StatusConflict, "Username already taken").Write(w)
		default:
			UnprocessableEntityError("Invalid username or password").Write(w)
		}
		return
	}

	// Sign the new user straight in.
	token, err := s.identity.Login(r.Context(), username, password)
	if err != nil {
		slog.ErrorContext(r.Context(), "Post-register login failed", "error", err, "owner", username)
		InternalServerError("Account created, please sign in").Write(w)
		return
	}
	setSessionCookie(w, token, 0)

	slog.InfoContext(r.Context(), "User registered", "owner", username)
	NewHTMXResponse().
		Header("HX-Redirect", "/").
		TriggerSuccessNotification("Welcome, "+username).
		Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if s.identity == nil {
		ErrorResponse(http.StatusServiceUnavailable, "Accounts are not enabled").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	username := sanitizeInput(r.Form.Get("username"))
	password := r.Form.Get("password")

	token, err := s.identity.Login(r.Context(), username, password)
	if err != nil {
		// Same answer for unknown user and wrong password.
		ErrorResponse(http.StatusUnauthorized, "Invalid credentials").Write(w)
		return
	}
	setSessionCookie(w, token, 0)

	slog.InfoContext(r.Context(), "User logged in", "owner", username)
	NewHTMXResponse().
		Header("HX-Redirect", "/").
		Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	clearSessionCookie(w)
	NewHTMXResponse().
		Header("HX-Redirect", "/").
		Write(w)
}

// handleClaimReward marks the signed-in user's goal reward as claimed.
// The claim requires the goal to actually be reached and survives
// later balance drops.
func (s *Server) handleClaimReward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if s.identity == nil {
		ErrorResponse(http.StatusServiceUnavailable, "Accounts are not enabled").Write(w)
		return
	}

	owner := s.currentOwner(r)
	if owner == s.defaultOwner {
		ErrorResponse(http.StatusUnauthorized, "Sign in to claim rewards").Write(w)
		return
	}

	claimed, err := s.identity.RewardClaimed(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Reward state lookup failed", "error", err, "owner", owner)
		InternalServerError("Could not check reward state").Write(w)
		return
	}
	if claimed {
		NewHTMXResponse().
			BodyHTML(`<div class="reward claimed">Reward already claimed</div>`).
			Write(w)
		return
	}

	snap, err := s.getSnapshot(r.Context(), owner)
	if err != nil {
		slog.ErrorContext(r.Context(), "Reward snapshot error", "error", err, "owner", owner)
		InternalServerError("Could not check goal progress").Write(w)
		return
	}
	if !s.svc.GoalReached(snap) {
		ErrorResponse(http.StatusConflict, "Goal not reached yet").Write(w)
		return
	}

	if err := s.identity.ClaimReward(r.Context(), owner); err != nil {
		slog.ErrorContext(r.Context(), "Reward claim failed", "error", err, "owner", owner)
		InternalServerError("Could not claim reward").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Reward claimed", "owner", owner)
	NewHTMXResponse().
		TriggerSuccessNotification("Goal reward claimed!").
		BodyHTML(`<div class="reward claimed">&#127942; Reward claimed</div>`).
		Write(w)
}
