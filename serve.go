package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/phrasefit/phrasefit/internal/match"
	"github.com/phrasefit/phrasefit/internal/openrouter"
	"github.com/phrasefit/phrasefit/internal/server"
)

// loadServerConfig reads the yaml config and falls back to the environment
// when the default config file does not exist.
func loadServerConfig(f cliFlags) (server.Config, error) {
	conf, err := server.LoadConfig(f.confPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || f.confPath != defaultConfPath {
			return server.Config{}, err
		}
		conf = server.Config{}
		conf.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
		conf.OpenRouter.TextModel = os.Getenv("PHRASEFIT_TEXT_MODEL")
		conf.OpenRouter.ImageModel = os.Getenv("PHRASEFIT_IMAGE_MODEL")
	}
	if f.textModel != "" {
		conf.OpenRouter.TextModel = f.textModel
	}
	if f.imageModel != "" {
		conf.OpenRouter.ImageModel = f.imageModel
	}
	return conf, nil
}

func newClient(f cliFlags) (*openrouter.Client, server.Config, error) {
	conf, err := loadServerConfig(f)
	if err != nil {
		return nil, server.Config{}, err
	}
	client, err := openrouter.New(conf.OpenRouter.ClientConfig())
	if err != nil {
		return nil, server.Config{}, err
	}
	return client, conf, nil
}

func buildPersister(conf server.Config) (match.Persister, error) {
	switch {
	case conf.RedisURL != "":
		return match.NewRedisStore(conf.RedisURL)
	case conf.SnapshotFile != "":
		return match.NewFileStore(conf.SnapshotFile), nil
	}
	return nil, nil
}

func runServe(ctx context.Context, f cliFlags) error {
	client, conf, err := newClient(f)
	if err != nil {
		return err
	}

	store := match.NewMemStore()
	persist, err := buildPersister(conf)
	if err != nil {
		return err
	}
	if persist != nil {
		defer persist.Close()
		snap, err := persist.Load()
		if err != nil {
			return fmt.Errorf("failed to load snapshot: %w", err)
		}
		store.Restore(snap)
		ancli.Okf("restored %v postings, %v keywords, %v phrases\n",
			len(snap.Postings), len(snap.Keywords), len(snap.Phrases))
	}

	svc := match.NewService(store, client, persist)
	return server.New(conf, svc, client).Run(ctx)
}
