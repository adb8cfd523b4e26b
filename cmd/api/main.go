// cmd/api/main.go
package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	catalogServiceURL, _ := url.Parse(getEnv("CATALOG_SERVICE_URL", "http://localhost:8081"))
	circulationServiceURL, _ := url.Parse(getEnv("CIRCULATION_SERVICE_URL", "http://localhost:8082"))
	usersServiceURL, _ := url.Parse(getEnv("USERS_SERVICE_URL", "http://localhost:8083"))

	catalogProxy := httputil.NewSingleHostReverseProxy(catalogServiceURL)
	circulationProxy := httputil.NewSingleHostReverseProxy(circulationServiceURL)
	usersProxy := httputil.NewSingleHostReverseProxy(usersServiceURL)

	router := newRouter(catalogProxy, circulationProxy, usersProxy)

	port := getEnv("PORT", "8080")
	logger.Info("API gateway listening", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, router); err != nil {
		logger.Fatal("gateway stopped", zap.Error(err))
	}
}

// newRouter wires the service proxies. Mount is used rather than a
// "/*" Handle pattern so the bare collection paths (POST /api/v1/loans,
// GET /api/v1/loans) route as well as the subtrees.
func newRouter(catalogProxy, circulationProxy, usersProxy http.Handler) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Mount("/api/v1/catalog", http.StripPrefix("/api/v1/catalog", catalogProxy))
	router.Mount("/api/v1/loans", http.StripPrefix("/api/v1", circulationProxy))
	router.Mount("/api/v1/users", http.StripPrefix("/api/v1", usersProxy))
	return router
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
