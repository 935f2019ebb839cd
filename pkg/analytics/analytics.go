package analytics

import (
	"sort"
	"strings"

	"weibo-sentiment/pkg/domain"

	"github.com/go-ego/gse"
)

// stopWords are filtered out of word frequency counts.
var stopWords = map[string]bool{
	"的": true, "了": true, "是": true, "在": true, "和": true,
	"就": true, "都": true, "而": true, "及": true, "与": true,
	"也": true, "一个": true, "没有": true, "我们": true, "你们": true,
	"他们": true, "这": true, "那": true, "不": true, "很": true,
	"非常": true, "哦": true, "啊": true, "呢": true, "吧": true,
	"于": true,
}

// WordCount is one entry of a word frequency ranking.
type WordCount struct {
	Word  string
	Count int
}

// RegionCount is one entry of a region distribution.
type RegionCount struct {
	Region string
	Count  int
}

// TrendPoint is the per-day sentiment breakdown of a time trend.
type TrendPoint struct {
	Date     string
	Positive int
	Neutral  int
	Negative int
}

// Analyzer computes aggregate views over stored comments. It holds a
// word segmenter, which is expensive to build and safe to reuse.
type Analyzer struct {
	segmenter gse.Segmenter
}

// NewAnalyzer creates an Analyzer with the default segmentation
// dictionary loaded.
func NewAnalyzer() (*Analyzer, error) {
	var seg gse.Segmenter
	if err := seg.LoadDict(); err != nil {
		return nil, err
	}
	return &Analyzer{segmenter: seg}, nil
}

// WordFrequency returns the topN most frequent words across the
// comments' text, skipping stop words and single-character tokens.
func (a *Analyzer) WordFrequency(comments []domain.StoredComment, topN int) []WordCount {
	counts := make(map[string]int)
	for _, c := range comments {
		for _, word := range a.segmenter.Cut(c.Text, true) {
			word = strings.TrimSpace(word)
			if word == "" || stopWords[word] {
				continue
			}
			if len([]rune(word)) <= 1 {
				continue
			}
			counts[word]++
		}
	}

	ranking := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		ranking = append(ranking, WordCount{Word: word, Count: count})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].Word < ranking[j].Word
	})

	if topN > 0 && len(ranking) > topN {
		ranking = ranking[:topN]
	}
	return ranking
}

// SentimentDistribution counts comments per sentiment label. All three
// labels are always present in the result so downstream consumers can
// rely on the keys.
func SentimentDistribution(comments []domain.StoredComment) map[string]int {
	dist := map[string]int{
		domain.SentimentPositive: 0,
		domain.SentimentNeutral:  0,
		domain.SentimentNegative: 0,
	}
	for _, c := range comments {
		if _, ok := dist[c.SentimentLabel]; ok {
			dist[c.SentimentLabel]++
		}
	}
	return dist
}

// DailyTrend groups comments by day and sentiment label, sorted by
// date ascending. The date is the prefix of the canonical timestamp,
// so unparseable (degraded) timestamps group under their raw prefix.
func DailyTrend(comments []domain.StoredComment) []TrendPoint {
	byDate := make(map[string]*TrendPoint)
	for _, c := range comments {
		date, _, _ := strings.Cut(c.CreatedAt, " ")
		if date == "" {
			continue
		}

		point, ok := byDate[date]
		if !ok {
			point = &TrendPoint{Date: date}
			byDate[date] = point
		}

		switch c.SentimentLabel {
		case domain.SentimentPositive:
			point.Positive++
		case domain.SentimentNegative:
			point.Negative++
		default:
			point.Neutral++
		}
	}

	trend := make([]TrendPoint, 0, len(byDate))
	for _, point := range byDate {
		trend = append(trend, *point)
	}
	sort.Slice(trend, func(i, j int) bool {
		return trend[i].Date < trend[j].Date
	})
	return trend
}

// RegionDistribution counts comments per extracted region, most
// frequent first. Comments without a recognizable region are excluded.
func RegionDistribution(comments []domain.StoredComment) []RegionCount {
	counts := make(map[string]int)
	for _, c := range comments {
		region := ExtractRegion(c.Source)
		if region == regionUnknown {
			continue
		}
		counts[region]++
	}

	ranking := make([]RegionCount, 0, len(counts))
	for region, count := range counts {
		ranking = append(ranking, RegionCount{Region: region, Count: count})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].Region < ranking[j].Region
	})
	return ranking
}

// RegionSentiment cross-counts regions against sentiment labels.
func RegionSentiment(comments []domain.StoredComment) map[string]map[string]int {
	result := make(map[string]map[string]int)
	for _, c := range comments {
		region := ExtractRegion(c.Source)
		if region == regionUnknown {
			continue
		}

		if result[region] == nil {
			result[region] = map[string]int{
				domain.SentimentPositive: 0,
				domain.SentimentNeutral:  0,
				domain.SentimentNegative: 0,
			}
		}
		if _, ok := result[region][c.SentimentLabel]; ok {
			result[region][c.SentimentLabel]++
		}
	}
	return result
}

const (
	regionPrefix  = "来自"
	regionUnknown = "未知"
)

var (
	municipalities    = map[string]bool{"北京": true, "上海": true, "天津": true, "重庆": true}
	autonomousRegions = map[string]bool{"内蒙古": true, "宁夏": true, "新疆": true, "西藏": true, "广西": true}
	specialRegions    = map[string]bool{"香港": true, "澳门": true, "台湾": true}
)

// ExtractRegion extracts a normalized administrative region name from
// the free-text source field ("来自北京" and the like). The suffix is
// normalized so region names match standard administrative divisions.
func ExtractRegion(source string) string {
	if source == "" || !strings.Contains(source, regionPrefix) {
		return regionUnknown
	}

	region := strings.TrimSpace(strings.ReplaceAll(source, regionPrefix, ""))
	if region == "" {
		return regionUnknown
	}

	switch {
	case municipalities[region]:
		return region + "市"
	case autonomousRegions[region]:
		return region + "自治区"
	case len([]rune(region)) <= 2 && !specialRegions[region]:
		return region + "省"
	}
	return region
}
