package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/Danelya04/PawPal/internal/config"
	"github.com/Danelya04/PawPal/internal/database"
	"github.com/Danelya04/PawPal/internal/handlers"
	"github.com/Danelya04/PawPal/internal/jobs"
	"github.com/Danelya04/PawPal/internal/repository"
	cron "github.com/Danelya04/PawPal/internal/scheduler"
	"github.com/Danelya04/PawPal/internal/services"
	"github.com/Danelya04/PawPal/pkg/logger"
	"github.com/Danelya04/PawPal/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	petRepo := repository.NewPetRepository(db)
	postRepo := repository.NewPostRepository(db)
	adoptionRepo := repository.NewAdoptionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	imageRepo := repository.NewImageRepository(db)
	txnRunner := repository.NewTxnRunner(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	petService := services.NewPetService(petRepo, imageRepo)
	postService := services.NewPostService(postRepo)
	notificationService := services.NewNotificationService(notificationRepo)
	adoptionService := services.NewAdoptionService(petRepo, adoptionRepo, userRepo, notificationService, txnRunner)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	petHandler := handlers.NewPetHandler(petService, cfg)
	postHandler := handlers.NewPostHandler(postService, userService)
	adoptionHandler := handlers.NewAdoptionHandler(adoptionService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Register User routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")

	// Pet routes
	protectedPetRoutes := router.PathPrefix("/pets").Subrouter()
	protectedPetRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedPetRoutes.HandleFunc("", petHandler.CreatePetHandler).Methods("POST")
	protectedPetRoutes.HandleFunc("", petHandler.GetPetsHandler).Methods("GET")
	protectedPetRoutes.HandleFunc("/{id}", petHandler.GetPetHandler).Methods("GET")
	protectedPetRoutes.HandleFunc("/{id}", petHandler.UpdatePetHandler).Methods("PUT")
	protectedPetRoutes.HandleFunc("/{id}", petHandler.DeletePetHandler).Methods("DELETE")
	protectedPetRoutes.HandleFunc("/{id}/image", petHandler.UploadPetImageHandler).Methods("POST")

	// Adoption routes
	protectedAdoptionRoutes := router.PathPrefix("/adoption").Subrouter()
	protectedAdoptionRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedAdoptionRoutes.HandleFunc("/pets", petHandler.GetAdoptablePetsHandler).Methods("GET")
	protectedAdoptionRoutes.HandleFunc("/pets/{petId}/requests", adoptionHandler.CreateRequestHandler).Methods("POST")
	protectedAdoptionRoutes.HandleFunc("/pets/{petId}/requests", adoptionHandler.GetPendingRequestsHandler).Methods("GET")
	protectedAdoptionRoutes.HandleFunc("/pets/{petId}/requests/check", adoptionHandler.CheckPendingRequestHandler).Methods("GET")
	protectedAdoptionRoutes.HandleFunc("/requests", adoptionHandler.GetMyRequestsHandler).Methods("GET")
	protectedAdoptionRoutes.HandleFunc("/requests/{id}/accept", adoptionHandler.AcceptRequestHandler).Methods("POST")
	protectedAdoptionRoutes.HandleFunc("/requests/{id}/reject", adoptionHandler.RejectRequestHandler).Methods("POST")

	// Post routes
	protectedPostRoutes := router.PathPrefix("/posts").Subrouter()
	protectedPostRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedPostRoutes.HandleFunc("", postHandler.CreatePostHandler).Methods("POST")
	protectedPostRoutes.HandleFunc("", postHandler.GetPostsHandler).Methods("GET")
	protectedPostRoutes.HandleFunc("/{id}", postHandler.GetPostHandler).Methods("GET")
	protectedPostRoutes.HandleFunc("/{id}", postHandler.UpdatePostHandler).Methods("PUT")
	protectedPostRoutes.HandleFunc("/{id}", postHandler.DeletePostHandler).Methods("DELETE")
	protectedPostRoutes.HandleFunc("/{id}/like", postHandler.ToggleLikeHandler).Methods("POST")

	// Notification routes
	protectedNotificationRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedNotificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedNotificationRoutes.HandleFunc("", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkNotificationReadHandler).Methods("POST")

	// Uploaded images
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/users", userHandler.AdminGetAllUsersHandler).Methods("GET")
	adminRoutes.HandleFunc("/pets/{id}/transfer", adoptionHandler.AdminTransferOwnershipHandler).Methods("POST")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background maintenance
	janitor := jobs.NewAdoptionJanitor(adoptionService, notificationService)
	cron.StartAdoptionCronJobs(janitor)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
