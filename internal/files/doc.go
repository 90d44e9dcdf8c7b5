// Package files locates survey extract files on disk.
//
// Statistics Canada publishes one Labour Force Survey public use microdata
// file per month. Discovery lists the CSV and Excel extracts found in a
// directory in file-name order, which for the published naming scheme
// (pub0124.csv, pub0224.csv, ...) is also publication order within a year.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.InputDir)
//	extracts, err := discovery.FindExtracts(".")
package files
