package web

import (
	"errors"
	"log/slog"
	"net/http"

	"opportunity-board/internal/auth"
)

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/explore", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", "Log in", map[string]any{"Email": ""})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email, password := r.PostFormValue("email"), r.PostFormValue("password")
	u, sess, err := s.Auth.Login(r.Context(), email, password)
	if err != nil {
		status, msg := http.StatusUnauthorized, "Invalid email or password"
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			slog.Error("web: login failed", "error", err)
			status, msg = http.StatusInternalServerError, "Login is unavailable, try again later"
		}
		s.renderFlash(w, r, status, "login.html", "Log in", map[string]any{"Email": email}, &Flash{Kind: "error", Message: msg})
		return
	}
	s.setSessionCookie(w, sess.Token, sess.Expires)
	dest := "/explore"
	if u.IsAdmin() {
		dest = "/admin"
	}
	s.redirectWithFlash(w, r, dest, "success", "Welcome back!")
}

func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "signup.html", "Sign up", map[string]any{"Email": ""})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	email, password := r.PostFormValue("email"), r.PostFormValue("password")
	if password != r.PostFormValue("confirm") {
		s.renderFlash(w, r, http.StatusBadRequest, "signup.html", "Sign up", map[string]any{"Email": email},
			&Flash{Kind: "error", Message: "Passwords do not match"})
		return
	}
	if _, err := s.Auth.SignUp(r.Context(), email, password); err != nil {
		status, msg := http.StatusBadRequest, err.Error()
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			status = http.StatusConflict
		case errors.Is(err, auth.ErrInvalidInput):
		default:
			slog.Error("web: signup failed", "error", err)
			status, msg = http.StatusInternalServerError, "Sign up failed, try again later"
		}
		s.renderFlash(w, r, status, "signup.html", "Sign up", map[string]any{"Email": email}, &Flash{Kind: "error", Message: msg})
		return
	}
	_, sess, err := s.Auth.Login(r.Context(), email, password)
	if err != nil {
		s.redirectWithFlash(w, r, "/login", "success", "Account created, please log in")
		return
	}
	s.setSessionCookie(w, sess.Token, sess.Expires)
	s.redirectWithFlash(w, r, "/explore", "success", "Account created!")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		if err := s.Auth.Logout(r.Context(), c.Value); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
			slog.Warn("web: logout failed", "error", err)
		}
	}
	s.clearSessionCookie(w)
	s.redirectWithFlash(w, r, "/", "info", "Logged out")
}
