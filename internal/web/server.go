package web

import (
	"net/http"
	"time"

	"opportunity-board/internal/admin"
	"opportunity-board/internal/auth"
	"opportunity-board/internal/listing"
	"opportunity-board/internal/storage"
)

// Server serves the public board, the account pages and the admin console.
type Server struct {
	Feed         *listing.Feed
	Store        storage.Store
	Admin        *admin.Service
	Auth         *auth.Provider
	SiteName     string
	CookieSecure bool

	now func() time.Time
}

func applyMiddleware(h http.Handler, m ...func(http.Handler) http.Handler) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

// Handler returns the routed handler with the global middleware chain.
func (s *Server) Handler() http.Handler {
	if s.now == nil {
		s.now = time.Now
	}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /explore", s.handleExplore)
	mux.HandleFunc("GET /posts/{category}/{id}", s.handlePostDetail)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		jsonOK(w, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /signup", s.handleSignupForm)
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /logout", s.handleLogout)

	adminOnly := func(h http.HandlerFunc) http.Handler { return s.requireAdmin(h) }
	mux.Handle("GET /admin", adminOnly(s.handleDashboard))
	mux.Handle("GET /admin/posts", adminOnly(s.handleManage))
	mux.Handle("GET /admin/new/{collection}", adminOnly(s.handleNewForm))
	mux.Handle("POST /admin/new/{collection}", adminOnly(s.handleCreate))
	mux.Handle("GET /admin/edit/{collection}/{id}", adminOnly(s.handleEditForm))
	mux.Handle("POST /admin/edit/{collection}/{id}", adminOnly(s.handleUpdate))
	mux.Handle("GET /admin/delete/{collection}/{id}", adminOnly(s.handleDeleteConfirm))
	mux.Handle("POST /admin/delete/{collection}/{id}", adminOnly(s.handleDelete))

	mux.HandleFunc("GET /api/feed", s.apiFeed)
	api := func(h http.HandlerFunc) http.Handler { return s.requireAdminAPI(h) }
	mux.Handle("GET /api/admin/dashboard", api(s.apiDashboard))
	mux.Handle("GET /api/admin/{collection}", api(s.apiList))
	mux.Handle("POST /api/admin/{collection}", api(s.apiCreate))
	mux.Handle("GET /api/admin/{collection}/{id}", api(s.apiGet))
	mux.Handle("PUT /api/admin/{collection}/{id}", api(s.apiUpdate))
	mux.Handle("DELETE /api/admin/{collection}/{id}", api(s.apiDelete))

	return applyMiddleware(mux,
		loggerMiddleware,
		secureHeadersMiddleware,
		s.authMiddleware,
	)
}
