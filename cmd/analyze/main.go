package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"weibo-sentiment/pkg/analytics"
	"weibo-sentiment/pkg/config"
	"weibo-sentiment/pkg/db"
)

func main() {
	var (
		userID    = flag.Int64("user", 1, "User whose stored comments to analyze")
		keyword   = flag.String("keyword", "", "Optional text substring filter")
		startTime = flag.String("start", "", "Optional created_at lower bound (YYYY-MM-DD HH:MM:SS)")
		topWords  = flag.Int("top", 10, "Number of top words to print")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	client := db.NewPostgresClient(db.PostgresConfig{DSN: cfg.PostgresDSN})
	if err := client.Connect(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer client.Close()

	store := db.NewSQLStore(client)
	comments, err := store.Search(ctx, *userID, *keyword, *startTime)
	if err != nil {
		log.Fatalf("Failed to load comments: %v", err)
	}
	if len(comments) == 0 {
		log.Printf("No stored comments for user %d with the given filters", *userID)
		return
	}

	analyzer, err := analytics.NewAnalyzer()
	if err != nil {
		log.Fatalf("Failed to initialize analyzer: %v", err)
	}

	fmt.Printf("Analyzing %d comments for user %d\n\n", len(comments), *userID)

	dist := analytics.SentimentDistribution(comments)
	fmt.Printf("Sentiment distribution: %d positive, %d neutral, %d negative\n\n",
		dist["positive"], dist["neutral"], dist["negative"])

	fmt.Printf("Top %d words:\n", *topWords)
	for i, wc := range analyzer.WordFrequency(comments, *topWords) {
		fmt.Printf("  %2d. %s (%d)\n", i+1, wc.Word, wc.Count)
	}
	fmt.Println()

	fmt.Println("Daily trend:")
	for _, point := range analytics.DailyTrend(comments) {
		fmt.Printf("  %s: +%d =%d -%d\n", point.Date, point.Positive, point.Neutral, point.Negative)
	}
	fmt.Println()

	regions := analytics.RegionDistribution(comments)
	if len(regions) == 0 {
		fmt.Println("No regions recognized in comment sources")
		return
	}
	fmt.Println("Region distribution:")
	for _, rc := range regions {
		fmt.Printf("  %s: %d\n", rc.Region, rc.Count)
	}
	fmt.Println()

	cross := analytics.RegionSentiment(comments)
	fmt.Println("Region sentiment:")
	for _, rc := range regions {
		breakdown := cross[rc.Region]
		fmt.Printf("  %s: +%d =%d -%d\n", rc.Region,
			breakdown["positive"], breakdown["neutral"], breakdown["negative"])
	}
}
