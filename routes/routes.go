package routes

import (
	"net/http"

	"profile-service/config"
	"profile-service/handlers"
	"profile-service/middleware"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func SetupRoutes(cfg config.Config, profileHandler *handlers.ProfileHandler, authHandler *handlers.AuthHandler) http.Handler {
	router := mux.NewRouter()

	users := router.PathPrefix("/users").Subrouter()
	users.HandleFunc("", middleware.ErrorHandler(profileHandler.ListHandler)).Methods("GET")
	users.HandleFunc("", middleware.ErrorHandler(profileHandler.CreateHandler)).Methods("POST")
	users.HandleFunc("/search", middleware.ErrorHandler(profileHandler.SearchHandler)).Methods("GET")
	users.HandleFunc("/name/{handle}", middleware.ErrorHandler(profileHandler.GetByHandleHandler)).Methods("GET")
	users.HandleFunc("/mutual-friends/{handle}", middleware.ErrorHandler(profileHandler.MutualFriendsHandler)).Methods("GET")
	users.HandleFunc("/repos/{handle}", middleware.ErrorHandler(profileHandler.ReposHandler)).Methods("GET")
	users.HandleFunc("/followers/{handle}", middleware.ErrorHandler(profileHandler.FollowersHandler)).Methods("GET")
	users.HandleFunc("/following/{handle}", middleware.ErrorHandler(profileHandler.FollowingHandler)).Methods("GET")
	users.HandleFunc("/{handle}", middleware.ErrorHandler(profileHandler.UpdateHandler)).Methods("PUT")
	users.HandleFunc("/{handle}", middleware.ErrorHandler(profileHandler.DeleteHandler)).Methods("DELETE")

	auth := router.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", middleware.ErrorHandler(authHandler.RegisterHandler)).Methods("POST")
	auth.HandleFunc("/login", middleware.ErrorHandler(authHandler.LoginHandler)).Methods("POST")
	auth.Handle("/me", middleware.AuthMiddleware(cfg)(middleware.ErrorHandler(authHandler.MeHandler))).Methods("GET")

	router.HandleFunc("/health", handlers.HealthHandler).Methods("GET")

	router.Use(middleware.RequestLogger)

	return otelhttp.NewHandler(router, "profile-service")
}
