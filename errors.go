/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Seednode/quizroyale/questions"
	"github.com/Seednode/quizroyale/royale"
)

var (
	errBadRequest = errors.New("malformed request")
	errNoHostKey  = errors.New("missing X-Host-Key header")
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool     `json:"success"`
	Error   apiError `json:"error"`
}

var statusByCode = map[string]int{
	"BAD_REQUEST":            http.StatusBadRequest,
	"INVALID_CONFIG":         http.StatusBadRequest,
	"INVALID_TEAM":           http.StatusBadRequest,
	"INVALID_ANSWER":         http.StatusBadRequest,
	"INVALID_NAME":           http.StatusBadRequest,
	"NOT_HOST":               http.StatusForbidden,
	"NOT_PLAYER":             http.StatusForbidden,
	"ROOM_NOT_FOUND":         http.StatusNotFound,
	"QUESTION_SET_NOT_FOUND": http.StatusNotFound,
	"TEAM_FULL":              http.StatusConflict,
	"NAME_TAKEN":             http.StatusConflict,
	"ALREADY_ANSWERED":       http.StatusConflict,
	"TOO_LATE":               http.StatusConflict,
	"EMPTY_ROSTER":           http.StatusConflict,
	"GAME_IN_PROGRESS":       http.StatusConflict,
	"INVALID_PHASE":          http.StatusConflict,
	"ROOM_CLOSED":            http.StatusGone,
	"CAPACITY_EXCEEDED":      http.StatusServiceUnavailable,
}

// errorCode extends the room taxonomy with the conditions only the HTTP
// layer can produce.
func errorCode(err error) string {
	switch {
	case errors.Is(err, errBadRequest):
		return "BAD_REQUEST"
	case errors.Is(err, errNoHostKey):
		return "NOT_HOST"
	case errors.Is(err, questions.ErrSetNotFound):
		return "QUESTION_SET_NOT_FOUND"
	}

	return royale.Code(err)
}

func statusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (a *app) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errorCode(err)
	status := statusFor(code)

	message := err.Error()
	if status == http.StatusInternalServerError {
		a.log.WithError(err).WithFields(logrus.Fields{
			"path": r.URL.Path,
			"ip":   realIP(r),
		}).Error("request failed")

		message = "internal server error"
	}

	_, werr := writeJSON(a.cfg, w, status, errorResponse{
		Error: apiError{Code: code, Message: message},
	})
	if werr != nil {
		a.log.WithError(werr).Debug("writing error response")
	}
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body{height:100%;margin:0;font-family:sans-serif;}main{display:flex;flex-direction:column;align-items:center;justify-content:center;min-height:100%;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", html.EscapeString(title)))
	htmlBody.WriteString(fmt.Sprintf("<body><main>%s</main></body></html>", body))

	return htmlBody.String()
}
