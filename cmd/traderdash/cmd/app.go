package cmd

import (
	"fmt"

	"github.com/rustyeddy/traderdash/backend"
	"github.com/rustyeddy/traderdash/config"
	"github.com/rustyeddy/traderdash/gate"
	"github.com/rustyeddy/traderdash/view"
)

// App is what every command works against.
type App struct {
	Config *config.Config
	Store  gate.Store
	Client *backend.Client
	Gate   *gate.Gate
	Scans  *view.ScanCache
}

// NewApp wires the client to the credential file and the gate to the
// client.
func NewApp(cfg *config.Config) (*App, error) {
	timeout, err := cfg.Backend.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.Scan.TTLDuration()
	if err != nil {
		return nil, err
	}

	store := gate.NewFileStore(cfg.Credential.Path)
	client := backend.NewClient(backend.Options{
		BaseURL:    cfg.Backend.URL,
		Timeout:    timeout,
		AuthHeader: cfg.Backend.AuthHeader,
		Credentials: backend.CredentialFunc(func() (string, bool) {
			return gate.Credential(store)
		}),
	})

	g, err := gate.New(store, client)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}

	return &App{
		Config: cfg,
		Store:  store,
		Client: client,
		Gate:   g,
		Scans:  view.NewScanCache(ttl),
	}, nil
}

// Model returns a fresh view model over the app's client.
func (a *App) Model() *view.Model {
	return view.NewModel(a.Client, a.Scans)
}
