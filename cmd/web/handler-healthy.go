package main

import (
	"net/http"

	"github.com/justinas/nosurf"
)

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// csrfToken hands out the token that POST requests must carry in the X-CSRF-Token header.
func (app *application) csrfToken(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, map[string]string{"csrf_token": nosurf.Token(r)})
}
