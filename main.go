package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"

	"moodflix/api"
	"moodflix/config"
	"moodflix/handlers"
	apiclient "moodflix/services/api"
	"moodflix/services/authstate"
	"moodflix/services/calendar"
	"moodflix/services/credentials"
	"moodflix/services/kakao"
	"moodflix/services/movies"
	"moodflix/services/search"
	"moodflix/utils"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogDir)

	fs := afero.NewOsFs()
	if err := fs.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("[main] creating data dir %s: %v", cfg.DataDir, err)
	}

	credStore, err := credentials.NewService(fs, cfg.DataDir)
	if err != nil {
		log.Fatalf("[main] credential store: %v", err)
	}
	searchSvc, err := search.NewService(fs, cfg.DataDir)
	if err != nil {
		log.Fatalf("[main] search history: %v", err)
	}

	authSvc := authstate.NewService(credStore)
	apiClient := apiclient.NewClient(cfg.APIBaseURL, credStore, nil)
	movieSvc := movies.NewService(apiClient)
	calendarSvc := calendar.New(authSvc, apiClient)

	var kakaoClient *kakao.Client
	var exchanger *kakao.Exchanger
	if cfg.KakaoEnabled() {
		kakaoClient = kakao.NewClient(cfg.KakaoAppKey, cfg.RedirectURL, nil)
		exchanger = kakao.NewExchanger(kakaoClient)
	} else {
		log.Printf("[main] WARNING: KAKAO_APP_KEY not set, login endpoints disabled")
		exchanger = kakao.NewExchanger(nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authSvc.Subscribe(func(loggedIn bool) {
		calendarSvc.HandleAuthChange(ctx, loggedIn)
		if !loggedIn {
			movieSvc.ClearCache()
		}
	})

	calendarSvc.Start(ctx)
	go authSvc.Resolve()

	router := buildRouter(authSvc, apiClient, movieSvc, calendarSvc, searchSvc, exchanger, kakaoClient)

	srv := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}

func buildRouter(
	authSvc *authstate.Service,
	client *apiclient.Client,
	movieSvc *movies.Service,
	calendarSvc *calendar.Service,
	searchSvc *search.Service,
	exchanger *kakao.Exchanger,
	kakaoClient *kakao.Client,
) http.Handler {
	router := utils.NewRouter()

	authHandler := handlers.NewAuthHandler(exchanger, kakaoClient, authSvc)
	movieHandler := handlers.NewMoviesHandler(movieSvc, searchSvc)
	calendarHandler := handlers.NewCalendarHandler(calendarSvc, client)
	searchHandler := handlers.NewSearchHandler(searchSvc)

	router.HandleFunc("/api/auth/login-url", authHandler.LoginURL).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/kakao/callback", authHandler.KakaoCallback).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/me", authHandler.Me).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	router.HandleFunc("/api/movies", movieHandler.List).Methods(http.MethodGet)
	router.HandleFunc("/api/movies/featured", movieHandler.Featured).Methods(http.MethodGet)
	router.HandleFunc("/api/movies/new-releases", movieHandler.NewReleases).Methods(http.MethodGet)
	router.HandleFunc("/api/movies/search", movieHandler.Search).Methods(http.MethodGet)
	router.HandleFunc("/api/movies/recommendations", movieHandler.Recommendations).Methods(http.MethodPost)
	router.HandleFunc("/api/movies/sync", movieHandler.Sync).Methods(http.MethodPost)
	router.HandleFunc("/api/movies/{id}/bundle", movieHandler.Bundle).Methods(http.MethodGet)

	// Shared photo tickets are public; register before the session-gated
	// calendar subrouter so the middleware does not catch them.
	router.HandleFunc("/api/calendar/shared/{id}", calendarHandler.GetShared).Methods(http.MethodGet)

	gated := router.PathPrefix("/api/calendar").Subrouter()
	gated.Use(api.SessionRequiredMiddleware(authSvc))
	gated.HandleFunc("", calendarHandler.GetMonth).Methods(http.MethodGet)
	gated.HandleFunc("/entry", calendarHandler.GetEntry).Methods(http.MethodGet)
	gated.HandleFunc("/entry", calendarHandler.SaveEntry).Methods(http.MethodPost)
	gated.HandleFunc("/entry", calendarHandler.DeleteEntry).Methods(http.MethodDelete)

	router.HandleFunc("/api/search/history", searchHandler.History).Methods(http.MethodGet)
	router.HandleFunc("/api/search/history", searchHandler.Add).Methods(http.MethodPost)
	router.HandleFunc("/api/search/history", searchHandler.Clear).Methods(http.MethodDelete)

	return router
}

func setupLogging(logDir string) {
	if logDir == "" {
		return
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Printf("[main] creating log dir failed, logging to stderr only: %v", err)
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "moodflix.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
