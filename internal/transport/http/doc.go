// Package http implements the HTTP handlers of the cleaning service.
// Handlers stay thin: they parse the request, delegate to the services
// package and format the response. Failures are rendered as RFC 7807
// problem details through errors.ErrorHandler.
//
// # Endpoints
//
//	POST /api/v1/clean          clean an uploaded extract, respond with the table
//	POST /api/v1/clean/report   clean an uploaded extract, respond with the summary
//	GET  /api/health            health status
//	GET  /api/health/ready      readiness of the data directories
//	GET  /api/health/live       liveness
//	GET  /api/version           build information
//
// An extract is uploaded either as the "file" field of a multipart form or
// as the raw request body, typed by Content-Type (text/csv or the xlsx
// media type). Query parameters unemployed_only, classification, format
// and sheet override the configured cleaning defaults.
package http
