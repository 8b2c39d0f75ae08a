package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/myrjola/murderai/internal/errors"
	"github.com/myrjola/murderai/internal/logging"
)

const (
	defaultRecentGames = 20
	maxRecentGames     = 100
)

func (app *application) startGame(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Difficulty string `json:"difficulty"`
	}
	if !app.readJSON(w, r, &in) {
		return
	}
	snapshot, err := app.engine.StartGame(r.Context(), in.Difficulty)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	if err = app.sessionManager.RenewToken(r.Context()); err != nil {
		app.serverError(w, r, errors.Wrap(err, "renew session token"))
		return
	}
	app.sessionManager.Put(r.Context(), string(currentGameKey), snapshot.ID)
	app.writeJSON(w, r, http.StatusCreated, snapshot)
}

func (app *application) currentGame(w http.ResponseWriter, r *http.Request) {
	id := app.sessionManager.GetString(r.Context(), string(currentGameKey))
	if id == "" {
		app.clientError(w, r, http.StatusNotFound, "no game started")
		return
	}
	snapshot, err := app.engine.GetSession(id)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, snapshot)
}

func (app *application) recentGames(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentGames
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxRecentGames {
			app.clientError(w, r, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxRecentGames))
			return
		}
		limit = n
	}
	games, err := app.engine.RecentGames(r.Context(), limit)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, games)
}

func (app *application) getGame(w http.ResponseWriter, r *http.Request) {
	snapshot, err := app.engine.GetSession(r.PathValue("id"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, snapshot)
}

func (app *application) questionSuspect(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SuspectID string `json:"suspect_id"`
		Question  string `json:"question"`
	}
	if !app.readJSON(w, r, &in) {
		return
	}
	ctx := logging.WithAttrs(r.Context(), slog.String("suspect_id", in.SuspectID))
	response, err := app.engine.QuestionSuspect(ctx, r.PathValue("id"), in.SuspectID, in.Question)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"suspect_id": in.SuspectID, "response": response})
}

func (app *application) brief(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Question string `json:"question"`
	}
	if !app.readJSON(w, r, &in) {
		return
	}
	response, err := app.engine.Brief(r.Context(), r.PathValue("id"), in.Question)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"response": response})
}

// useTool answers 200 even when the query found nothing. The result explains the miss and costs nothing.
func (app *application) useTool(w http.ResponseWriter, r *http.Request) {
	args := map[string]string{}
	if !app.readJSON(w, r, &args) {
		return
	}
	result, err := app.engine.UseTool(r.Context(), r.PathValue("id"), r.PathValue("tool"), args)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) accuse(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SuspectID string `json:"suspect_id"`
	}
	if !app.readJSON(w, r, &in) {
		return
	}
	outcome, err := app.engine.Accuse(r.Context(), r.PathValue("id"), in.SuspectID)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, outcome)
}

func (app *application) autoplay(w http.ResponseWriter, r *http.Request) {
	turn, err := app.engine.AutoStep(r.Context(), r.PathValue("id"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, turn)
}

func (app *application) transcript(w http.ResponseWriter, r *http.Request) {
	t, err := app.engine.Transcript(r.Context(), r.PathValue("id"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, t)
}
