package main

import (
	"net/http"

	"teamhub/config"
	"teamhub/database"
	"teamhub/handlers"
	"teamhub/logger"
	"teamhub/middleware"
	"teamhub/models"
	"teamhub/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg := config.Load()
	log := logger.New("teamhub")
	defer log.Sync()

	middleware.SetJWTSecret(cfg.JWTSecret)

	if err := database.Init(cfg); err != nil {
		log.Fatalw("failed to initialize database", "error", err)
	}

	teamService := services.NewTeamService(database.GetDB(), cfg, log)

	authHandler := handlers.NewAuthHandler(cfg, log)
	teamHandler := handlers.NewTeamHandler(teamService, log)
	adminHandler := handlers.NewAdminHandler(log)

	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Post("/register", authHandler.Register)
	router.Post("/login", authHandler.Login)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)

		r.Get("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", teamHandler.Create)
			r.Get("/", teamHandler.ListMine)
			r.Get("/{teamID}", teamHandler.Get)
			r.Patch("/{teamID}", teamHandler.Update)
			r.Post("/{teamID}/active", teamHandler.ToggleActive)
			r.Delete("/{teamID}", teamHandler.Delete)

			r.Get("/{teamID}/members", teamHandler.ListMembers)
			r.Post("/{teamID}/members/{userID}/promote", teamHandler.Promote)
			r.Post("/{teamID}/members/{userID}/demote", teamHandler.Demote)
			r.Delete("/{teamID}/members/{userID}", teamHandler.RemoveMember)

			r.Get("/{teamID}/join-requests", teamHandler.ListTeamJoinRequests)
		})

		r.Route("/join-requests", func(r chi.Router) {
			r.Post("/", teamHandler.CreateJoinRequest)
			r.Get("/", teamHandler.ListMyJoinRequests)
			r.Get("/{requestID}", teamHandler.GetJoinRequest)
			r.Post("/{requestID}/review", teamHandler.ReviewJoinRequest)
		})

		// Admin only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin))
			r.Get("/admin/users", adminHandler.ListUsers)
			r.Post("/admin/users/{userID}/active", adminHandler.ToggleUserActive)
		})
	})

	log.Infow("server starting", "port", cfg.ServerPort)
	if err := http.ListenAndServe(":"+cfg.ServerPort, router); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
