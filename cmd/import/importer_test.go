package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"homeinsight-listings/internal/models"
	"homeinsight-listings/internal/repositories"
	"homeinsight-listings/internal/transformers"
	"homeinsight-listings/pkg/cache"
	"homeinsight-listings/pkg/cache/cachetest"
	"homeinsight-listings/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func csvRows(n int) string {
	var b strings.Builder
	b.WriteString("title,price,propertyType\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "home %d,%d,House\n", i, 1000*(i+1))
	}
	return b.String()
}

func newImporter(store *repositories.MemoryStore, p *cachetest.Provider, batch int) *Importer {
	rt := cache.NewReadThrough(p, cache.WithLogger(logger.Discard()))
	tr := transformers.NewListingTransformer(transformers.Options{DefaultOwner: primitive.NewObjectID()})
	return NewImporter(store.Listings(), rt, tr, batch, logger.Discard())
}

func TestImporter_Batches(t *testing.T) {
	store := repositories.NewMemoryStore()
	p := cachetest.New()
	ctx := context.Background()
	genKey := cache.NamespaceGenerationKey(cache.ListingQueryNamespace)
	p.Put(genKey, []byte("old"))

	res, err := newImporter(store, p, 2).Run(ctx, strings.NewReader(csvRows(5)+"bad,1,Castle\n"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Imported != 5 || res.Skipped != 1 {
		t.Errorf("result = %+v, want 5 imported 1 skipped", res)
	}
	if store.Writes() != 3 {
		t.Errorf("store writes = %d, want 3 batches", store.Writes())
	}
	got, _ := store.Listings().Find(ctx, models.ListingFilter{})
	if len(got) != 5 {
		t.Errorf("stored %d listings, want 5", len(got))
	}
	if gen, _, _ := p.Get(ctx, genKey); string(gen) == "old" {
		t.Error("cached searches were not invalidated")
	}
}

func TestImporter_StoreFailure(t *testing.T) {
	store := repositories.NewMemoryStore()
	store.FailWith(errors.New("down"))
	p := cachetest.New()

	res, err := newImporter(store, p, 10).Run(context.Background(), strings.NewReader(csvRows(3)))
	if err == nil {
		t.Fatal("expected error")
	}
	if res.Imported != 0 {
		t.Errorf("Imported = %d", res.Imported)
	}
	if len(p.Keys()) != 0 {
		t.Errorf("nothing was written but cache changed: %v", p.Keys())
	}
}
