/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"github.com/Seednode/quizroyale/royale"
)

const (
	hostKeyHeader = "X-Host-Key"
	qrSize        = 320

	// Bounds every room command issued from a request.
	commandTimeout = 5 * time.Second
)

var requests = validator.New()

type createRoomRequest struct {
	Config      *royale.GameConfig `json:"config" validate:"-"`
	QuestionSet string             `json:"questionSet" validate:"omitempty,max=64,printascii"`
	Questions   []royale.Question  `json:"questions" validate:"omitempty,max=500"`
}

type createRoomResponse struct {
	Code    string `json:"code"`
	HostKey string `json:"hostKey"`
	JoinURL string `json:"joinUrl"`
}

type joinRoomRequest struct {
	DisplayName string `json:"displayName" validate:"required,max=128"`
	TeamID      string `json:"teamId" validate:"omitempty,len=1,alpha"`
	PlayerID    string `json:"playerId" validate:"omitempty,uuid"`
}

type joinRoomResponse struct {
	PlayerID string `json:"playerId"`
	TeamID   string `json:"teamId"`
}

type questionSetsResponse struct {
	Default string   `json:"default"`
	Sets    []string `json:"sets"`
}

func decodeRequest(w http.ResponseWriter, r *http.Request, v any) error {
	if err := readJSON(w, r, v); err != nil {
		return err
	}

	if err := requests.Struct(v); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			return badRequest("field %s failed %s", fields[0].Field(), fields[0].Tag())
		}
		return badRequest("%v", err)
	}

	return nil
}

// joinURL is the link players open to reach room code.
func joinURL(cfg *Config, r *http.Request, code string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     cfg.prefix + "/",
		RawQuery: url.Values{"room": {code}}.Encode(),
	}

	return u.String()
}

func serveCreateRoom(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		var req createRoomRequest
		if err := decodeRequest(w, r, &req); err != nil {
			a.writeError(w, r, err)
			return
		}

		cfg := royale.DefaultGameConfig()
		if req.Config != nil {
			cfg = *req.Config
		}

		bank := req.Questions
		if len(bank) == 0 {
			set := req.QuestionSet
			if set == "" {
				set = a.cfg.questionSet
			}

			ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
			defer cancel()

			var err error
			bank, err = a.store.Get(ctx, set)
			if err != nil {
				a.writeError(w, r, err)
				return
			}
		}

		room, hostKey, err := a.rooms.Create(cfg, bank)
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		written, err := writeJSON(a.cfg, w, http.StatusCreated, createRoomResponse{
			Code:    room.Code(),
			HostKey: hostKey,
			JoinURL: joinURL(a.cfg, r, room.Code()),
		})
		if err != nil {
			a.log.WithError(err).Debug("writing create response")
			return
		}

		a.served(r, "room "+room.Code(), written, startTime)
	}
}

func serveListRooms(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		written, err := writeJSON(a.cfg, w, http.StatusOK, a.rooms.List())
		if err != nil {
			a.log.WithError(err).Debug("writing room list")
			return
		}

		a.served(r, "room list", written, startTime)
	}
}

func serveRoomState(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		room, err := a.rooms.Lookup(ps.ByName("code"))
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		written, err := writeJSON(a.cfg, w, http.StatusOK, room.Snapshot())
		if err != nil {
			a.log.WithError(err).Debug("writing room state")
			return
		}

		a.served(r, "state of room "+room.Code(), written, startTime)
	}
}

func serveJoinRoom(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, err := a.rooms.Lookup(ps.ByName("code"))
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		var req joinRoomRequest
		if err := decodeRequest(w, r, &req); err != nil {
			a.writeError(w, r, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
		defer cancel()

		player, err := room.Join(ctx, royale.JoinRequest{
			DisplayName: req.DisplayName,
			TeamID:      strings.ToUpper(req.TeamID),
			PlayerID:    req.PlayerID,
		})
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		a.log.WithFields(logrus.Fields{
			"room":   room.Code(),
			"player": player.ID,
			"team":   player.TeamID,
			"ip":     realIP(r),
		}).Debug("player joined over http")

		_, err = writeJSON(a.cfg, w, http.StatusOK, joinRoomResponse{
			PlayerID: player.ID,
			TeamID:   player.TeamID,
		})
		if err != nil {
			a.log.WithError(err).Debug("writing join response")
		}
	}
}

func serveCloseRoom(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		room, err := a.rooms.Lookup(ps.ByName("code"))
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		key := r.Header.Get(hostKeyHeader)
		if key == "" {
			a.writeError(w, r, errNoHostKey)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
		defer cancel()

		if err := room.HostClose(ctx, "", key); err != nil {
			a.writeError(w, r, err)
			return
		}

		securityHeaders(a.cfg, w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func serveRoomQR(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		room, err := a.rooms.Lookup(ps.ByName("code"))
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		png, err := qrcode.Encode(joinURL(a.cfg, r, room.Code()), qrcode.Medium, qrSize)
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(a.cfg, w)

		written, err := w.Write(png)
		if err != nil {
			a.log.WithError(err).Debug("writing qr code")
			return
		}

		a.served(r, "qr code for room "+room.Code(), written, startTime)
	}
}

func serveQuestionSets(a *app) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
		defer cancel()

		sets, err := a.store.Sets(ctx)
		if err != nil {
			a.writeError(w, r, err)
			return
		}

		_, err = writeJSON(a.cfg, w, http.StatusOK, questionSetsResponse{
			Default: a.cfg.questionSet,
			Sets:    sets,
		})
		if err != nil {
			a.log.WithError(err).Debug("writing question sets")
		}
	}
}

func registerRoomRoutes(a *app, mux *httprouter.Router) {
	a.handle(mux, http.MethodPost, "/api/rooms", serveCreateRoom(a))
	a.handle(mux, http.MethodGet, "/api/rooms", serveListRooms(a))
	a.handle(mux, http.MethodGet, "/api/rooms/:code", serveRoomState(a))
	a.handle(mux, http.MethodDelete, "/api/rooms/:code", serveCloseRoom(a))
	a.handle(mux, http.MethodPost, "/api/rooms/:code/join", serveJoinRoom(a))
	a.handle(mux, http.MethodGet, "/api/rooms/:code/qr", serveRoomQR(a))
	a.handle(mux, http.MethodGet, "/api/rooms/:code/ws", serveRoomSocket(a))
	a.handle(mux, http.MethodGet, "/api/question-sets", serveQuestionSets(a))
}
