package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"homeinsight-listings/internal/repositories"
	"homeinsight-listings/internal/transformers"
	"homeinsight-listings/pkg/cache"
	"homeinsight-listings/pkg/config"
	"homeinsight-listings/pkg/database"
	"homeinsight-listings/pkg/logger"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func main() {
	var (
		file       = flag.String("file", "data.csv", "CSV file to import")
		owner      = flag.String("owner", "", "user id for rows without createdBy")
		batch      = flag.Int("batch", 100, "listings per insert")
		configPath = flag.String("config", "configs/config.yaml", "config file")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Default().Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(os.Stdout, cfg.Log.Level)
	log := logger.GlobalLogger

	if cfg.Database.Driver != config.DriverMongo {
		log.Fatalf("Import needs the mongo driver, got %q", cfg.Database.Driver)
	}

	opts := transformers.Options{}
	if *owner != "" {
		if opts.DefaultOwner, err = primitive.ObjectIDFromHex(*owner); err != nil {
			log.Fatalf("Invalid -owner %q: %v", *owner, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m, err := database.Connect(ctx, cfg, log)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer m.Close()

	c, err := cache.New(cfg, log)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer c.Close()

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *file, err)
	}
	defer f.Close()

	im := NewImporter(repositories.ListingsWithDeadline(repositories.NewListingRepository(m.DB), cfg.DatabaseTimeout()), c, transformers.NewListingTransformer(opts), *batch, log)
	res, err := im.Run(ctx, f)
	if err != nil {
		log.Errorf("Import failed after %d listings: %v", res.Imported, err)
		return
	}
	log.Printf("Data import completed: %d imported, %d skipped", res.Imported, res.Skipped)
}
