package main

import (
	"context"
	_ "embed"
	"log"
	"os"

	"skyview/apis/geocoding"
	"skyview/apis/geolocation"
	"skyview/apis/openmeteo"
	"skyview/cli"
	"skyview/config"
	"skyview/manager"
)

//go:embed config.yaml
var configRaw []byte

func main() {
	if err := run(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(configRaw, os.Getenv("SKYVIEW_CONFIG"))
	if err != nil {
		log.Printf("config: %s\n", err)
		return err
	}

	logger, err := config.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Printf("logger: %s\n", err)
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pipeline := manager.New(
		openmeteo.New(cfg.Forecast, logger),
		manager.WithLogger(logger),
		manager.WithUnits(cfg.UnitSystem()),
		manager.WithLocateOptions(cfg.LocateOptions()),
		manager.WithSuggestDebounce(cfg.Suggest.Debounce),
		manager.WithSuggestLimit(cfg.Geocoding.SuggestLimit),
	)
	pipeline.SetGeocoding(geocoding.New(cfg.Geocoding, logger))
	pipeline.SetLocator(geolocation.New(cfg.Geolocation, logger))

	cmd, err := cli.New(pipeline)
	if err != nil {
		logger.Errorf("new cli: %s", err)
		return err
	}

	return cmd.ExecuteContext(ctx)
}
