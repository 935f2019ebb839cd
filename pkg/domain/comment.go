package domain

import "time"

// Sentiment labels assigned by the classifier. The three values are
// contractual: stored rows and analytics both key on them.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// RawComment is a comment exactly as the comment endpoint returns it:
// locale-formatted timestamp, markup-laden text. It only exists in
// transit between fetch and normalization.
type RawComment struct {
	CreatedAt  string `json:"created_at"`
	Text       string `json:"text"`
	Source     string `json:"source"`
	ScreenName string `json:"screen_name"`
	Desc       string `json:"description"`
}

// Comment is the canonical normalized shape: timestamp reformatted to
// "2006-01-02 15:04:05", text stripped of markup. Sentiment fields are
// attached after classification.
type Comment struct {
	CreatedAt  string `bson:"created_at"`
	Text       string `bson:"text"`
	Source     string `bson:"source"`
	ScreenName string `bson:"screen_name"`
	Desc       string `bson:"description"`

	SentimentScore float64 `bson:"sentiment_score"`
	SentimentLabel string  `bson:"sentiment_label"`
}

// StoredComment is a Comment as persisted: owned by exactly one user,
// with a store-assigned id and crawl time.
type StoredComment struct {
	ID        int64     `bson:"id"`
	UserID    int64     `bson:"user_id"`
	CrawlTime time.Time `bson:"crawl_time"`
	Comment   `bson:",inline"`
}
