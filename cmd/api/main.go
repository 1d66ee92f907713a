package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/cookwithlove/directory-api/internal/handlers"
	"github.com/cookwithlove/directory-api/internal/mailer"
	"github.com/cookwithlove/directory-api/internal/repository"
	"github.com/cookwithlove/directory-api/internal/service"
	"github.com/cookwithlove/directory-api/internal/verification"
	"github.com/cookwithlove/directory-api/pkg/config"
	"github.com/cookwithlove/directory-api/pkg/database"
	"github.com/cookwithlove/directory-api/pkg/events"
	"github.com/cookwithlove/directory-api/pkg/logger"
	mw "github.com/cookwithlove/directory-api/pkg/middleware"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Pending signups live in memory; a restart drops them
	pending := verification.NewStore()
	defer pending.Close()

	mailService := mailer.NewFromConfig(cfg.Email)

	userRepo := repository.NewUserRepository(pool)
	restaurantRepo := repository.NewRestaurantRepository(pool)
	dishRepo := repository.NewDishRepository(pool)
	attractionRepo := repository.NewAttractionRepository(pool)
	rateLimitRepo := repository.NewRateLimitRepository(redisClient)

	authService := service.NewAuthService(userRepo, pending, mailService, eventBus, cfg)
	restaurantService := service.NewRestaurantService(restaurantRepo, eventBus)
	dishService := service.NewDishService(dishRepo, restaurantRepo)
	attractionService := service.NewAttractionService(attractionRepo, eventBus)

	h := handlers.New(authService, restaurantService, dishService, attractionService, rateLimitRepo, cfg)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("directory-api"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(h.SignupRateLimit(10, time.Minute))
				r.Post("/register", h.Register)
				r.Post("/verify-email", h.VerifyEmail)
				r.Post("/resend-verification", h.ResendVerification)
				r.Post("/forgot-password", h.ForgotPassword)
				r.Post("/reset-password", h.ResetPassword)
			})
			r.Post("/login", h.Login)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireJWT(""))
				r.Get("/profile", h.GetProfile)
				r.Put("/profile", h.UpdateProfile)
				r.Put("/change-password", h.ChangePassword)
				r.Delete("/account", h.DeleteAccount)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.RequireJWT("admin"))
			r.Get("/users", h.ListUsers)
			r.Get("/users/{id}", h.GetUser)
			r.Patch("/users/{id}", h.UpdateUser)
			r.Delete("/users/{id}", h.DeleteUser)
			r.Get("/pending-verifications", h.PendingVerifications)
		})

		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", h.ListRestaurants)
			r.Get("/{id}", h.GetRestaurant)
			r.Get("/{id}/dishes", h.ListDishesByRestaurant)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireJWT("business"))
				r.Post("/", h.CreateRestaurant)
				r.Put("/{id}", h.UpdateRestaurant)
				r.Delete("/{id}", h.DeleteRestaurant)
			})
		})

		r.Route("/dishes", func(r chi.Router) {
			r.Get("/", h.ListDishes)
			r.Get("/{id}", h.GetDish)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireJWT("business"))
				r.Post("/", h.CreateDish)
				r.Put("/{id}", h.UpdateDish)
				r.Delete("/{id}", h.DeleteDish)
			})
		})

		r.Route("/attractions", func(r chi.Router) {
			r.Get("/", h.ListAttractions)
			r.Get("/search", h.SearchAttractions)
			r.Get("/stats", h.AttractionStats)
			r.Get("/{id}", h.GetAttraction)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireJWT("admin"))
				r.Post("/", h.CreateAttraction)
				r.Put("/{id}", h.UpdateAttraction)
				r.Patch("/{id}/status", h.UpdateAttractionStatus)
				r.Delete("/{id}", h.DeleteAttraction)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down directory API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting directory API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
