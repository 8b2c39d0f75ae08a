package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthy", app.healthy)

	session := alice.New(app.sessionManager.LoadAndSave, app.noSurf)
	mux.Handle("GET /api/csrf", session.ThenFunc(app.csrfToken))
	mux.Handle("POST /api/games", session.ThenFunc(app.startGame))
	mux.Handle("GET /api/games", session.ThenFunc(app.recentGames))
	mux.Handle("GET /api/games/current", session.ThenFunc(app.currentGame))
	mux.Handle("GET /api/games/{id}", session.ThenFunc(app.getGame))
	mux.Handle("POST /api/games/{id}/questions", session.ThenFunc(app.questionSuspect))
	mux.Handle("POST /api/games/{id}/brief", session.ThenFunc(app.brief))
	mux.Handle("POST /api/games/{id}/tools/{tool}", session.ThenFunc(app.useTool))
	mux.Handle("POST /api/games/{id}/accusations", session.ThenFunc(app.accuse))
	mux.Handle("POST /api/games/{id}/autoplay", session.ThenFunc(app.autoplay))
	mux.Handle("GET /api/games/{id}/transcript", session.ThenFunc(app.transcript))

	mux.HandleFunc("/", app.notFound)

	return alice.New(app.recoverPanic, app.logRequest, secureHeaders, app.timeout).Then(mux)
}
