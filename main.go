package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"weibo-sentiment/pkg/comments"
	"weibo-sentiment/pkg/config"
	"weibo-sentiment/pkg/crawl"
	"weibo-sentiment/pkg/credentials"
	"weibo-sentiment/pkg/db"
	"weibo-sentiment/pkg/httpclient"
	"weibo-sentiment/pkg/search"
	"weibo-sentiment/pkg/sentiment"
	"weibo-sentiment/pkg/service"
	"weibo-sentiment/pkg/worker"
)

func main() {
	var (
		keyword    = flag.String("keyword", "", "Search keyword to crawl comments for")
		count      = flag.Int("count", 20, "Number of comments to collect")
		userID     = flag.Int64("user", 1, "Owning user id for stored comments")
		cookieFile = flag.String("cookies", "", "Path to the session cookie file (overrides COOKIE_FILE)")
		backend    = flag.String("backend", "", "Storage backend: postgres, supabase or mongo (overrides STORE_BACKEND)")
	)
	flag.Parse()

	if *keyword == "" {
		log.Fatal("A search keyword is required (-keyword)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *cookieFile != "" {
		cfg.CookieFile = *cookieFile
	}
	if *backend != "" {
		cfg.Backend = *backend
	}

	// Credentials are loaded once per run; failure to load any is fatal
	// because nothing downstream can authenticate.
	creds, err := credentials.Load(cfg.CookieFile)
	if err != nil {
		log.Fatalf("Failed to load credentials: %v", err)
	}
	log.Printf("Loaded %d session cookies from %s", creds.Len(), cfg.CookieFile)

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open comment store: %v", err)
	}
	defer closeStore()

	discovery := search.NewDiscovery(httpclient.NewClient(httpclient.BrowserClient, creds), cfg.SearchBaseURL)
	fetcher := comments.NewFetcher(httpclient.NewClient(httpclient.AjaxClient, creds), cfg.APIBaseURL)

	svc := service.NewService(service.Config{
		Crawler: crawl.NewOrchestrator(discovery, fetcher),
		Scorer:  worker.NewPool(cfg.ScoreWorkers, sentiment.NewClassifier()),
		Store:   store,
	})

	start := time.Now()
	report, err := svc.CrawlAndStore(ctx, *userID, *keyword, *count)
	if errors.Is(err, crawl.ErrNoResults) {
		log.Printf("No comments found for %q, nothing stored", *keyword)
		return
	}
	if err != nil {
		log.Fatalf("Crawl failed: %v", err)
	}

	fmt.Printf("Stored %d of %d requested comments for %q in %s\n",
		report.Collected, report.Requested, *keyword, time.Since(start).Round(time.Millisecond))
	fmt.Printf("Sentiment: %d positive, %d neutral, %d negative\n",
		report.Distribution["positive"], report.Distribution["neutral"], report.Distribution["negative"])
	if report.Degraded > 0 {
		fmt.Printf("%d comments kept their raw timestamps (unparseable)\n", report.Degraded)
	}
}

// openStore connects the configured storage backend and returns it with
// its close function.
func openStore(ctx context.Context, cfg *config.Config) (db.CommentStore, func(), error) {
	switch cfg.Backend {
	case config.BackendMongo:
		store, err := db.NewMongoStore(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Connect(ctx); err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close(ctx) }, nil

	case config.BackendSupabase:
		client := db.NewSupabaseClient(db.SupabaseConfig{
			SupabaseURL: cfg.SupabaseURL,
			SupabaseKey: cfg.SupabaseKey,
			Password:    cfg.SupabasePassword,
		})
		if err := client.Connect(ctx); err != nil {
			return nil, nil, err
		}
		store := db.NewSQLStore(client)
		if err := store.Init(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		return store, func() { client.Close() }, nil

	default:
		client := db.NewPostgresClient(db.PostgresConfig{DSN: cfg.PostgresDSN})
		if err := client.Connect(ctx); err != nil {
			return nil, nil, err
		}
		store := db.NewSQLStore(client)
		if err := store.Init(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		return store, func() { client.Close() }, nil
	}
}
