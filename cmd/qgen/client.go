package main

import (
	"os"

	"qgen/pkg/auth"
	"qgen/pkg/backend"
)

// newBackendClient builds the backend client for one command invocation.
// QGEN_TOKEN short-circuits the credentials file; otherwise the token
// comes from a watched ~/.qgen/credentials.json. The returned cleanup
// must be called when the command finishes.
func newBackendClient(cfg *Config, paths *Paths) (*backend.Client, func()) {
	var tokens backend.TokenSource
	cleanup := func() {}

	if tok := os.Getenv("QGEN_TOKEN"); tok != "" {
		tokens = backend.StaticToken(tok)
	} else {
		src := auth.NewFileSource(paths.CredentialsPath)
		tokens = src
		cleanup = src.Close
	}

	var opts []backend.Option
	if d := cfg.RequestTimeout(); d > 0 {
		opts = append(opts, backend.WithTimeout(d))
	}
	return backend.New(cfg.BackendURL, tokens, opts...), cleanup
}

// loadClientEnv resolves paths, loads config, and builds the client in
// one step, since almost every subcommand needs all three.
func loadClientEnv() (*Config, *Paths, *backend.Client, func(), error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cfg, err := LoadConfig(paths.ConfigPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	client, cleanup := newBackendClient(cfg, paths)
	return cfg, paths, client, cleanup, nil
}
