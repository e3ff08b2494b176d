package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"reslocate/internal/handlers"
	"reslocate/internal/middlewares"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	pm := middlewares.NewPrometheusMiddleware()
	r.Use(middlewares.CorsMiddleware)
	r.Use(middlewares.RateLimit)
	r.Use(pm.Instrument)

	ch := handlers.NewCommonHandler(s.db)
	r.HandleFunc("/", ch.HelloWorldHandler)
	r.HandleFunc("/health", ch.HealthHandler)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.registerVerificationRoutes(r)
	s.registerMailRoutes(r)

	return r
}

func (s *Server) registerVerificationRoutes(r *mux.Router) {
	vh := handlers.NewVerificationHandler(s.verificationService)

	r.HandleFunc("/api/verifications", vh.IssueRequest).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/verifications/submit-by-contact", vh.SubmitCodeByContact).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/verifications/{id}/submit", vh.SubmitCode).Methods("POST", "OPTIONS")
}

func (s *Server) registerMailRoutes(r *mux.Router) {
	mh := handlers.NewMailHandler(s.mailerService)

	r.HandleFunc("/api/send-verification-email", mh.SendVerificationEmail).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/verify-smtp", mh.VerifySMTP).Methods("GET", "OPTIONS")
}
