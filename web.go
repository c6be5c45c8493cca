/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/Seednode/quizroyale/logging"
	"github.com/Seednode/quizroyale/metrics"
	"github.com/Seednode/quizroyale/questions"
	"github.com/Seednode/quizroyale/royale"
)

const (
	timeout time.Duration = 10 * time.Second
)

// app carries the shared state every handler needs.
type app struct {
	cfg     *Config
	log     logrus.FieldLogger
	rooms   *royale.Registry
	store   questions.Store
	metrics *metrics.Metrics
}

func securityHeaders(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Permissions-Policy", "geolocation=(), midi=(), sync-xhr=(), microphone=(), camera=(), magnetometer=(), gyroscope=(), fullscreen=(), payment=()")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")

	if cfg.scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

// served logs a completed response at debug level.
func (a *app) served(r *http.Request, what string, written int, start time.Time) {
	a.log.WithFields(logrus.Fields{
		"size": humanReadableSize(int64(written)),
		"ip":   realIP(r),
		"took": time.Since(start).Round(time.Microsecond),
	}).Debugf("served %s", what)
}

func serveVersion(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(a.cfg, w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write([]byte("quizroyale v" + releaseVersion + "\n"))
		if err != nil {
			a.log.WithError(err).Debug("writing version")

			return
		}

		a.served(r, "version page", written, startTime)
	}
}

// handle registers h under the configured prefix, instrumented under its
// route pattern.
func (a *app) handle(mux *httprouter.Router, method, path string, h httprouter.Handle) {
	mux.Handle(method, a.cfg.prefix+path, a.metrics.Instrument(path, h))
}

func newRouter(a *app) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		a.log.WithFields(logrus.Fields{
			"path":  r.URL.Path,
			"panic": fmt.Sprint(i),
		}).Error("recovered from panic")

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(a.cfg, w)
		w.WriteHeader(http.StatusInternalServerError)

		_, _ = io.WriteString(w, newPage("Server Error", "An error has occurred. Please try again."))
	}

	a.handle(mux, http.MethodGet, "/", serveHomePage(a))
	a.handle(mux, http.MethodGet, "/healthz", serveHealthCheck(a))
	a.handle(mux, http.MethodGet, "/robots.txt", serveRobots(a))
	a.handle(mux, http.MethodGet, "/version", serveVersion(a))

	registerRoomRoutes(a, mux)

	if a.cfg.metrics {
		mux.GET(a.cfg.prefix+"/metrics", a.metrics.Handler())
	}

	if a.cfg.profile {
		registerProfileHandlers(a.cfg, mux)
	}

	return mux
}

// openQuestionStore returns the store rooms draw their banks from, seeded so
// that the configured set always exists.
func openQuestionStore(ctx context.Context, cfg *Config, log logrus.FieldLogger) (questions.Store, func() error, error) {
	bank := questions.Default()

	if cfg.questions != "" {
		loaded, err := questions.LoadFile(cfg.questions)
		if err != nil {
			return nil, nil, err
		}
		bank = loaded

		log.WithFields(logrus.Fields{
			"file":      cfg.questions,
			"questions": len(bank),
		}).Info("loaded question bank")
	}

	if cfg.redisAddr == "" {
		store := questions.NewMemoryStore()
		if err := store.Put(ctx, questions.DefaultSet, questions.Default()); err != nil {
			return nil, nil, err
		}
		if err := store.Put(ctx, cfg.questionSet, bank); err != nil {
			return nil, nil, err
		}

		return store, func() error { return nil }, nil
	}

	store, err := questions.NewRedisStore(ctx, questions.RedisOptions{
		Addr:     cfg.redisAddr,
		Password: cfg.redisPassword,
		DB:       cfg.redisDB,
	})
	if err != nil {
		return nil, nil, err
	}

	_, err = store.Get(ctx, cfg.questionSet)
	switch {
	case errors.Is(err, questions.ErrSetNotFound):
		if err := store.Put(ctx, cfg.questionSet, bank); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		log.WithField("set", cfg.questionSet).Info("seeded question set in redis")
	case err != nil:
		_ = store.Close()
		return nil, nil, err
	}

	log.WithField("addr", cfg.redisAddr).Info("using redis question store")

	return store, store.Close, nil
}

func ServePage(ctx context.Context, cfg *Config) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	log, err := logging.New(logging.Options{
		Format:  cfg.logFormat,
		Verbose: cfg.verbose,
	})
	if err != nil {
		return err
	}

	log.WithField("version", releaseVersion).Info("starting quizroyale")

	store, closeStore, err := openQuestionStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("opening question store: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.WithError(err).Warn("closing question store")
		}
	}()

	m := metrics.New()

	rooms := royale.NewRegistry(royale.RegistryOptions{
		MaxRooms:    cfg.maxRooms,
		IdleTimeout: cfg.sessionTimeout,
		RevealDelay: cfg.revealDelay,
		PlayerGrace: cfg.playerTimeout,
		Logger:      log,
		Metrics:     m,
	})
	go rooms.Run(ctx)

	cfg.prefix = strings.TrimSuffix(cfg.prefix, "/")

	a := &app{
		cfg:     cfg,
		log:     log,
		rooms:   rooms,
		store:   store,
		metrics: m,
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           newRouter(a),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}

	errs := make(chan error, 1)

	go func() {
		log.Infof("listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)

		var err error
		if cfg.tlsKey != "" && cfg.tlsCert != "" {
			err = srv.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err = <-errs:
	}

	log.Info("shutting down")

	// Websockets are hijacked, so rooms must say goodbye before the server
	// stops tracking connections.
	rooms.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	return err
}
