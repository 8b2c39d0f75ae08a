package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/myrjola/murderai/internal/casefile"
	"github.com/myrjola/murderai/internal/engine"
	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/game"
)

// maxBodyBytes is plenty for a question to a suspect.
const maxBodyBytes = 64 << 10

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.errorJSON(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status), slog.String("message", message))
	app.errorJSON(w, r, status, message)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// gameError maps engine errors to responses. Anything unexpected is a server error.
func (app *application) gameError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrSessionNotFound):
		app.clientError(w, r, http.StatusNotFound, "game not found")
	case errors.Is(err, casefile.ErrUnknownDifficulty):
		app.clientError(w, r, http.StatusBadRequest, "difficulty must be easy, medium or hard")
	case errors.Is(err, game.ErrUnknownSuspect):
		app.clientError(w, r, http.StatusBadRequest, "unknown suspect")
	case errors.Is(err, game.ErrEmptyQuestion):
		app.clientError(w, r, http.StatusBadRequest, "question must not be empty")
	default:
		app.serverError(w, r, err)
	}
}

func (app *application) errorJSON(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, map[string]string{"error": message})
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "write response", errors.SlogError(err))
	}
}

// readJSON decodes the request body into dst. An empty body leaves dst untouched.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		app.clientError(w, r, http.StatusBadRequest, "malformed JSON body")
		return false
	}
	return true
}
