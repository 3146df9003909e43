package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"homeinsight-listings/internal/models"
	"homeinsight-listings/internal/repositories"
	"homeinsight-listings/internal/transformers"
	"homeinsight-listings/pkg/cache"
	"homeinsight-listings/pkg/logger"
)

// Importer loads listings from CSV in fixed-size batches.
type Importer struct {
	listings    repositories.ListingRepository
	cache       *cache.ReadThrough
	transformer transformers.ListingTransformer
	batchSize   int
	log         *logger.Logger
}

type Result struct {
	Imported int
	Skipped  int
}

func NewImporter(listings repositories.ListingRepository, c *cache.ReadThrough, t transformers.ListingTransformer, batchSize int, log *logger.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Importer{listings: listings, cache: c, transformer: t, batchSize: batchSize, log: log}
}

// Run imports every valid row of r. Rows the transformer rejects are logged
// and skipped; a store failure stops the import. Cached searches are dropped
// once at the end if anything was written.
func (im *Importer) Run(ctx context.Context, r io.Reader) (Result, error) {
	var res Result
	rows, err := transformers.NewRowReader(r)
	if err != nil {
		return res, err
	}

	batch := make([]models.Listing, 0, im.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := im.listings.InsertMany(ctx, batch)
		res.Imported += n
		if err != nil {
			return fmt.Errorf("insert batch: %w", err)
		}
		im.log.Printf("Imported %d listings", res.Imported)
		batch = batch[:0]
		return nil
	}

	for {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, im.finish(ctx, res, fmt.Errorf("read csv: %w", err))
		}

		listing, err := im.transformer.TransformRow(row)
		if err != nil {
			res.Skipped++
			im.log.Warnf("Skipping line %d: %v", rows.Line(), err)
			continue
		}
		batch = append(batch, *listing)
		if len(batch) == im.batchSize {
			if err := flush(); err != nil {
				return res, im.finish(ctx, res, err)
			}
		}
	}
	err = flush()
	return res, im.finish(ctx, res, err)
}

func (im *Importer) finish(ctx context.Context, res Result, err error) error {
	if res.Imported > 0 {
		if ierr := im.cache.InvalidateNamespace(ctx, cache.ListingQueryNamespace); ierr != nil {
			im.log.Errorf("Failed to invalidate cached searches: %v", ierr)
		}
	}
	return err
}
