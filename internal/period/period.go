package period

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// All lists the granularities every transaction is folded into.
var All = []Granularity{Day, Week, Month}

func Parse(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Day, Week, Month:
		return g, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Bucket is the half-open interval [Start, End) of one period.
type Bucket struct {
	Granularity Granularity
	Start       time.Time
	End         time.Time
}

// Indexer maps dates to buckets in a single fixed location.
type Indexer struct {
	loc *time.Location
}

func NewIndexer(loc *time.Location) *Indexer {
	if loc == nil {
		loc = time.UTC
	}
	return &Indexer{loc: loc}
}

func (i *Indexer) Location() *time.Location {
	return i.loc
}

// Bucket returns the bucket containing date. Weeks start on Monday.
func (i *Indexer) Bucket(date civil.Date, g Granularity) (Bucket, error) {
	var start, end time.Time
	switch g {
	case Day:
		start = time.Date(date.Year, date.Month, date.Day, 0, 0, 0, 0, i.loc)
		end = time.Date(date.Year, date.Month, date.Day+1, 0, 0, 0, 0, i.loc)
	case Week:
		offset := (int(date.In(time.UTC).Weekday()) + 6) % 7
		start = time.Date(date.Year, date.Month, date.Day-offset, 0, 0, 0, 0, i.loc)
		end = time.Date(date.Year, date.Month, date.Day-offset+7, 0, 0, 0, 0, i.loc)
	case Month:
		start = time.Date(date.Year, date.Month, 1, 0, 0, 0, 0, i.loc)
		end = time.Date(date.Year, date.Month+1, 1, 0, 0, 0, 0, i.loc)
	default:
		return Bucket{}, fmt.Errorf("unknown period %q", g)
	}
	return Bucket{Granularity: g, Start: start, End: end}, nil
}

// Buckets returns the day, week and month buckets containing date.
func (i *Indexer) Buckets(date civil.Date) []Bucket {
	buckets := make([]Bucket, 0, len(All))
	for _, g := range All {
		b, _ := i.Bucket(date, g)
		buckets = append(buckets, b)
	}
	return buckets
}

// Today is the current date in the indexer's location.
func (i *Indexer) Today(now time.Time) civil.Date {
	return civil.DateOf(now.In(i.loc))
}
