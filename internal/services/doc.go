// Package services implements the business logic layer of lfsclean. It sits
// between the transports (CLI and HTTP handlers) and the cleaning pipeline,
// so that both entry points share one implementation.
//
// # Available Services
//
//	- CleaningService: cleans single extracts, whole directories of monthly
//	  extracts and uploaded streams, and writes tables, summaries and drop
//	  reports
//	- HealthService: liveness, readiness and version information
//
// # Batch Cleaning
//
// CleanDirectory cleans every extract of a directory concurrently, bounded
// by cleaning.workers, using an errgroup. Results are concatenated in
// file-name order regardless of completion order, and drop reports are
// merged. The first failing file cancels the rest and fails the batch:
//
//	svc := services.NewCleaningService(cfg.Cleaning, files.NewDiscovery(paths.InputDir), metrics, logger)
//	result, err := svc.CleanDirectory(ctx, paths.InputDir, cfg.Cleaning.Options())
//
// # Testing
//
// Services are tested against fixture extracts written to t.TempDir(), with
// the metrics recorder replaced by a testify mock.
package services
