package main

import (
	"flag"
	"fmt"
	"os"

	"lfsclean/internal/app"
	"lfsclean/internal/config"
	"lfsclean/internal/infrastructure"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	port := flag.Int("port", 0, "listen port (overrides the configured port)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		infrastructure.WithError(infrastructure.GetLogger(), err).Error("lfsclean-server failed")
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	application, err := app.NewApplication(cfg, logger)
	if err != nil {
		return err
	}
	return application.Run()
}
