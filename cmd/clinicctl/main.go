package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/psiclinic/clinic-cli/internal/apiclient"
	"github.com/psiclinic/clinic-cli/internal/authstore"
	"github.com/psiclinic/clinic-cli/internal/config"
	"github.com/psiclinic/clinic-cli/internal/querycache"
	"github.com/psiclinic/clinic-cli/pkg/logger"
	"github.com/psiclinic/clinic-cli/pkg/metrics"
	"github.com/psiclinic/clinic-cli/pkg/validator"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: clinicctl <command> [flags]

commands:
  login        sign in and store the token
  logout       discard stored credentials
  me           show the signed-in profile
  patients     list and search patients
  patient      create, update or delete a patient
  session      interactive session room for a patient
  approvals    list or approve pending practitioners
  suggestions  browse, create and like suggestions`)
	os.Exit(2)
}

// app bundles everything a command needs.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *authstore.Store
	client   *apiclient.Client
	cache    *querycache.Cache
	validate *validator.Validator
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	appLog := logger.NewLogger(&logger.Config{
		Level:  logger.WarnLevel,
		Output: os.Stderr,
	})

	store, err := authstore.New("")
	if err != nil {
		return nil, err
	}

	m := metrics.New("clinicctl", nil)
	client := apiclient.New(apiclient.Config{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
		RatePerSecond:  cfg.API.RatePerSecond,
		RateBurst:      cfg.API.RateBurst,
		BreakerMax:     cfg.API.BreakerMax,
		BreakerTimeout: cfg.API.BreakerTimeout,
		OnUnauthorized: func() {
			_ = store.Clear()
			fmt.Fprintln(os.Stderr, "session expired, run `clinicctl login` again")
		},
	}, m, appLog)

	state, err := store.Load()
	if err == nil && state.Token != "" {
		client.SetToken(state.Token)
	}

	return &app{
		cfg:      cfg,
		log:      appLog,
		store:    store,
		client:   client,
		cache:    querycache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval, m),
		validate: validator.New(),
	}, nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	a, err := newApp()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize")
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "login":
		err = a.cmdLogin(args)
	case "logout":
		err = a.store.Clear()
	case "me":
		err = a.cmdMe(args)
	case "patients":
		err = a.cmdPatients(args)
	case "patient":
		err = a.cmdPatient(args)
	case "session":
		err = a.cmdSession(args)
	case "approvals":
		err = a.cmdApprovals(args)
	case "suggestions":
		err = a.cmdSuggestions(args)
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
