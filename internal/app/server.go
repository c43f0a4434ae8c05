package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"webhook-proxy/internal/handlers"
	"webhook-proxy/internal/server"
)

// Router builds the HTTP handler with all routes configured
func (app *App) Router() http.Handler {
	h := handlers.New(app.Issuer, app.Intents)

	router := mux.NewRouter()
	SetupRoutes(router, h)
	return router
}

// RunServer creates the HTTP server for the application
func (app *App) RunServer() *server.Server {
	return server.New(app.Router(), app.Config.Port, app.Config.TLSCertFile, app.Config.TLSKeyFile)
}
