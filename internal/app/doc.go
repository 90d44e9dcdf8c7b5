// Package app wires the HTTP service together: it resolves the data
// directories, sets up OpenTelemetry, builds the cleaning and health
// services and mounts their handlers behind the middleware chain.
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run serves until SIGINT or SIGTERM, then drains in-flight requests
// within Server.ShutdownTimeout and flushes the telemetry providers.
//
// # Error Handling
//
// Initialization errors are returned to the caller. The package never
// calls os.Exit.
package app
