package main

import (
	"context"
	"flag"
	"log"

	"weibo-sentiment/pkg/config"
	"weibo-sentiment/pkg/db"
	"weibo-sentiment/pkg/replication"
)

func main() {
	mongoURI := flag.String("mongo", "", "Mongo connection string (defaults to MONGO_URI)")
	postgresDSN := flag.String("postgres", "", "Postgres connection string (defaults to DATABASE_URL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *mongoURI != "" {
		cfg.MongoURI = *mongoURI
	}
	if *postgresDSN != "" {
		cfg.PostgresDSN = *postgresDSN
	}

	ctx := context.Background()

	mongoStore, err := db.NewMongoStore(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		log.Fatalf("Failed to create Mongo store: %v", err)
	}
	if err := mongoStore.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer mongoStore.Close(ctx)

	pg := db.NewPostgresClient(db.PostgresConfig{DSN: cfg.PostgresDSN})
	if err := pg.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pg.Close()

	replicator, err := replication.NewReplicator(replication.Config{
		Mongo:    mongoStore,
		Postgres: pg,
	})
	if err != nil {
		log.Fatalf("Failed to create replicator: %v", err)
	}

	if err := replicator.ReplicateCommentsMongoToPostgres(ctx); err != nil {
		log.Fatalf("Replication failed: %v", err)
	}
}
