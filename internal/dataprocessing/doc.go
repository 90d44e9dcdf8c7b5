// Package dataprocessing turns raw Labour Force Survey extracts into cleaned,
// analysis-ready cohort tables.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Parser: loads CSV and Excel extracts into a text-typed dataframe
// 2. DatasetCleaner: runs the fixed cleaning pipeline over a loaded frame
// 3. Summarizer: counts labels per categorical column of a cleaned table
//
// # Usage
//
//	df, err := dataprocessing.ParseFile("pub0323.csv", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cleaner := dataprocessing.NewDatasetCleaner(df, logger)
//	result, err := cleaner.Transform(ctx, domain.DefaultCleaningOptions())
//
// # Pipeline
//
//	select + rename → decode → derive Date → students → labour force →
//	unemployed only → classification → completeness → reorder
//
// The cleaner never modifies the frame it was built from. Every Transform
// returns a fresh table together with a DropReport that counts the rows each
// filter removed and the cells whose codes could not be decoded.
//
// # Error Handling
//
// Structural problems surface as *errors.AppError values: a frame lacking
// required source columns yields an ErrTypeSchema error wrapping
// errors.ErrMissingColumns, unreadable input yields ErrTypeParsing.
package dataprocessing
