package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"reslocate/internal/database"
	"reslocate/internal/middlewares"
	"reslocate/internal/repositories"
	"reslocate/internal/services"
)

type Server struct {
	port                int
	httpServer          *http.Server
	db                  database.Service
	verificationService services.VerificationService
	mailerService       services.MailerService
}

func NewServer() *Server {
	portStr := os.Getenv("PORT")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Warn().Str("port", portStr).Msg("Invalid PORT environment variable. Using default 8080.")
		port = 8080
	}

	db := database.New()

	verificationRepo := repositories.NewVerificationRepository(db)
	mailerService := services.NewMailerService()

	s := &Server{
		port:                port,
		db:                  db,
		verificationService: services.NewVerificationService(verificationRepo, mailerService),
		mailerService:       mailerService,
	}

	go middlewares.CleanupVisitors()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Int("port", s.port).Msg("Starting server")
	log.Info().
		Str("smtp_host", os.Getenv("SMTP_HOST")).
		Str("smtp_port", os.Getenv("SMTP_PORT")).
		Str("smtp_user", os.Getenv("SMTP_USERNAME")).
		Msg("SMTP configuration loaded")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}

	if err := s.db.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
