// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dataaqu/weforward/internal/middleware"
)

// Routes assembles the HTTP router: public reads, session-guarded
// admin content management, auth, metrics and static uploads.
func (h *Handler) Routes(db *sql.DB) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(h.cfg.IsDevelopment())))
	r.Use(h.sessions.LoadAndSave)

	csrfProtect := middleware.CSRF(middleware.DefaultCSRFConfig(
		[]byte(h.cfg.SessionSecret), h.cfg.IsDevelopment()))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Method(http.MethodGet, "/metrics", h.collector.Handler())

	// Uploaded images are public by design: locators are embedded in
	// published article HTML.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(h.cfg.UploadsDir))))

	r.Route("/api/v1", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			public.Use(middleware.RateLimit(10, 20))
			public.Use(h.collector.Middleware("/api/v1/posts"))
			public.Get("/posts", h.ListPublishedPosts)
			public.Get("/posts/{slug}", h.GetPostBySlug)
		})

		api.Route("/auth", func(ar chi.Router) {
			ar.Use(csrfProtect)
			ar.Use(h.collector.Middleware("/api/v1/auth"))
			ar.With(h.login.Middleware()).Post("/login", h.Login)
			ar.With(middleware.Auth(h.sessions)).Post("/logout", h.Logout)
			ar.With(
				middleware.Auth(h.sessions),
				middleware.LoadPrincipal(h.sessions, db, h.cfg),
			).Get("/me", h.Me)
		})

		api.Route("/admin", func(ad chi.Router) {
			ad.Use(csrfProtect)
			ad.Use(middleware.Auth(h.sessions))
			ad.Use(middleware.LoadPrincipal(h.sessions, db, h.cfg))
			ad.Use(middleware.RequireAdmin())
			ad.Use(h.collector.Middleware("/api/v1/admin"))

			ad.Get("/posts", h.ListAllPosts)
			ad.Post("/posts", h.CreatePost)
			ad.Get("/posts/{id}", h.GetPost)
			ad.Put("/posts/{id}", h.UpdatePost)
			ad.Delete("/posts/{id}", h.DeletePost)
			ad.Post("/posts/audit", h.AuditPost)
			ad.Post("/media", h.UploadImage)
		})
	})

	return r
}
