/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

const healthTimeout = 2 * time.Second

func serveHomePage(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var body strings.Builder
		body.WriteString("<h1>quizroyale</h1>")

		code := strings.ToUpper(r.URL.Query().Get("room"))
		if room, err := a.rooms.Lookup(code); err == nil && code != "" {
			escaped := html.EscapeString(room.Code())
			body.WriteString(fmt.Sprintf("<p>Room <strong>%s</strong></p>", escaped))
			body.WriteString(fmt.Sprintf(`<img src="%s/api/rooms/%s/qr" alt="QR code for room %s" width="320" height="320">`,
				a.cfg.prefix, escaped, escaped))
		} else {
			body.WriteString(fmt.Sprintf("<p>%d rooms open</p>", a.rooms.Len()))
		}

		page := newPage("quizroyale", body.String())

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(page)))
		securityHeaders(a.cfg, w)

		written, err := w.Write([]byte(page))
		if err != nil {
			a.log.WithError(err).Debug("writing home page")

			return
		}

		a.served(r, "home page", written, startTime)
	}
}

// serveHealthCheck also pings the question store, so a lost redis
// connection fails the check.
func serveHealthCheck(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(a.cfg, w)

		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := a.store.Ping(ctx); err != nil {
			a.log.WithError(err).Warn("health check failed")

			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("Unavailable\n"))

			return
		}

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			a.log.WithError(err).Debug("writing health check")

			return
		}
	}
}

func serveRobots(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: *
Disallow: /api/

User-agent: Amazonbot
Disallow: /

User-agent: Bytespider
Disallow: /

User-agent: CCBot
Disallow: /

User-agent: GPTBot
Disallow: /`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(a.cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			a.log.WithError(err).Debug("writing robots.txt")

			return
		}
	}
}
