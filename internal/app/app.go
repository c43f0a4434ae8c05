package app

import (
	"net/http"

	commonhttp "webhook-proxy/internal/common/http"
	"webhook-proxy/internal/common/logging"
	"webhook-proxy/internal/config"
	"webhook-proxy/internal/dialogflow"
	"webhook-proxy/internal/oauth2"
)

// App holds all the application dependencies
type App struct {
	Config     *config.Config
	HTTPClient *http.Client
	Issuer     *oauth2.Issuer
	Intents    *dialogflow.Client
	Logger     logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config:     cfg,
		HTTPClient: commonhttp.NewHTTPClient(commonhttp.WithTimeout(cfg.ClientTimeout())),
		Logger:     logging.GetGlobalLogger().WithFields(logging.String("component", "app")),
	}

	if err := app.initializeOAuth(); err != nil {
		return nil, err
	}

	if err := app.initializeDialogflow(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *App) initializeOAuth() error {
	issuer, err := oauth2.NewIssuer(oauth2.IssuerConfig{
		ClientEmail: app.Config.ServiceAccountEmail,
		PrivateKey:  app.Config.ServiceAccountPrivateKey,
		TokenURI:    app.Config.TokenURI,
		HTTPClient:  app.HTTPClient,
	})
	if err != nil {
		return err
	}
	app.Issuer = issuer

	app.Logger.Info("Token issuer initialized",
		logging.String("client_email", app.Config.ServiceAccountEmail),
		logging.String("token_uri", app.Config.TokenURI),
	)
	return nil
}

func (app *App) initializeDialogflow() error {
	client, err := dialogflow.NewClient(dialogflow.Config{
		ProjectID:       app.Config.ProjectID,
		LocationID:      app.Config.LocationID,
		AgentID:         app.Config.AgentID,
		LanguageCode:    app.Config.LanguageCode,
		DefaultTimeZone: app.Config.DefaultTimeZone,
		BaseURL:         app.Config.APIBaseURL,
		HTTPClient:      app.HTTPClient,
	})
	if err != nil {
		return err
	}
	app.Intents = client

	app.Logger.Info("Dialogflow CX client initialized",
		logging.String("project_id", app.Config.ProjectID),
		logging.String("location_id", app.Config.LocationID),
		logging.String("agent_id", app.Config.AgentID),
		logging.String("language_code", app.Config.LanguageCode),
	)
	return nil
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.HTTPClient != nil {
		app.HTTPClient.CloseIdleConnections()
	}
}
