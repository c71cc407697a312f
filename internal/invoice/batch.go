// SPDX-License-Identifier: Apache-2.0

package invoice

import (
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// ExtractBatch applies Extract to each item independently and returns one
// result per item in input order. Extractions run on a pool of workers;
// results are written back by input index, so completion order never leaks
// into the output. One file's failure cannot affect any other file.
//
// Extraction is CPU-bound with no I/O, so there is no internal cancellation;
// callers wanting timeouts enforce them around the batch.
func (e *Extractor) ExtractBatch(items []BatchItem, workers int) BatchResult {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}

	results := make(BatchResult, len(items))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.extractOne(items[i])
			}
		}()
	}
	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	ok, failed := 0, 0
	for _, fr := range results {
		if fr.Err != nil {
			failed++
		} else {
			ok++
		}
	}
	e.logger.Info("batch extraction finished",
		zap.Int("files", len(items)),
		zap.Int("records", ok),
		zap.Int("errors", failed),
		zap.Int("workers", workers))
	return results
}

func (e *Extractor) extractOne(item BatchItem) FileResult {
	rec, err := e.Extract(item.Content, item.Filename)
	if err != nil {
		// Extract only ever fails with an *ExtractionError.
		exErr, ok := err.(*ExtractionError)
		if !ok {
			exErr = &ExtractionError{Filename: item.Filename, Kind: KindMalformedXML, Detail: err.Error()}
		}
		e.logger.Warn("extraction failed",
			zap.String("file", item.Filename),
			zap.String("kind", string(exErr.Kind)),
			zap.String("detail", exErr.Detail))
		return FileResult{Filename: item.Filename, Err: exErr}
	}
	return FileResult{Filename: item.Filename, Record: rec}
}
