package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/taskhive/engine/internal/api/handlers"
	mw "github.com/taskhive/engine/internal/api/middleware"
)

type Dependencies struct {
	HMACSecret       []byte
	HealthHandler    *handlers.HealthHandler
	AuthHandler      *handlers.AuthHandler
	TasksHandler     *handlers.TasksHandler
	ProjectsHandler  *handlers.ProjectsHandler
	TagsHandler      *handlers.TagsHandler
	NotesHandler     *handlers.NotesHandler
	ActivityHandler  *handlers.ActivityHandler
	AnalyticsHandler *handlers.AnalyticsHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	// Built-in middleware
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	// Health endpoints
	r.Get("/healthz", dep.HealthHandler.Liveness)
	r.Get("/readyz", dep.HealthHandler.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/logout", dep.AuthHandler.Logout)

			ar.Group(func(par chi.Router) {
				par.Use(mw.Auth(dep.HMACSecret))
				par.Get("/me", dep.AuthHandler.Me)
				par.Put("/preferences", dep.AuthHandler.UpdatePreferences)
			})
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))

			// Tasks
			protected.Route("/tasks", func(tr chi.Router) {
				tr.Get("/", dep.TasksHandler.List)
				tr.Post("/", dep.TasksHandler.Create)
				tr.Post("/bulk", dep.TasksHandler.Bulk)
				tr.Get("/{id}", dep.TasksHandler.Get)
				tr.Put("/{id}", dep.TasksHandler.Update)
				tr.Delete("/{id}", dep.TasksHandler.Delete)
				tr.Patch("/{id}/status", dep.TasksHandler.UpdateStatus)

				tr.Route("/{id}/subtasks", func(sr chi.Router) {
					sr.Post("/", dep.TasksHandler.CreateSubtask)
					sr.Put("/reorder", dep.TasksHandler.ReorderSubtasks)
					sr.Put("/{subtaskID}", dep.TasksHandler.UpdateSubtask)
					sr.Delete("/{subtaskID}", dep.TasksHandler.DeleteSubtask)
				})

				tr.Post("/{id}/tags/{tagID}", dep.TasksHandler.AttachTag)
				tr.Delete("/{id}/tags/{tagID}", dep.TasksHandler.DetachTag)
			})

			// Projects and memberships
			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Get("/{id}", dep.ProjectsHandler.Get)
				pr.Put("/{id}", dep.ProjectsHandler.Update)
				pr.Delete("/{id}", dep.ProjectsHandler.Delete)

				pr.Route("/{id}/members", func(mr chi.Router) {
					mr.Get("/", dep.ProjectsHandler.ListMembers)
					mr.Post("/", dep.ProjectsHandler.AddMember)
					mr.Put("/{memberID}", dep.ProjectsHandler.UpdateMember)
					mr.Delete("/{memberID}", dep.ProjectsHandler.RemoveMember)
				})
			})

			// Tags
			protected.Route("/tags", func(tr chi.Router) {
				tr.Get("/", dep.TagsHandler.List)
				tr.Post("/", dep.TagsHandler.Create)
				tr.Put("/{id}", dep.TagsHandler.Update)
				tr.Delete("/{id}", dep.TagsHandler.Delete)
			})

			// Quick notes
			protected.Route("/notes", func(nr chi.Router) {
				nr.Get("/", dep.NotesHandler.List)
				nr.Post("/", dep.NotesHandler.Create)
				nr.Put("/{id}", dep.NotesHandler.Update)
				nr.Delete("/{id}", dep.NotesHandler.Delete)
				nr.Post("/{id}/convert", dep.NotesHandler.Convert)
			})

			// Activity trail (read only)
			protected.Route("/activity", func(ar chi.Router) {
				ar.Get("/", dep.ActivityHandler.ListMine)
				ar.Get("/{targetType}/{targetID}", dep.ActivityHandler.ListForTarget)
			})

			// Analytics
			protected.Route("/analytics", func(anr chi.Router) {
				anr.Get("/dashboard", dep.AnalyticsHandler.Dashboard)
				anr.Get("/distribution", dep.AnalyticsHandler.Distribution)
				anr.Get("/projects", dep.AnalyticsHandler.Projects)
				anr.Get("/trend", dep.AnalyticsHandler.Trend)
			})
		})
	})

	return r
}
