package algo

import (
	"time"

	"github.com/semiconip/patentspike/schema"
)

// BucketByPeriod places each dated patent into every recency window it falls in.
// Every label is present in the result, possibly with an empty slice.
func BucketByPeriod(patents []schema.Patent, now time.Time) schema.PeriodBuckets {
	cutoffs := make([]time.Time, len(schema.Periods))
	buckets := make(schema.PeriodBuckets, len(schema.Periods))
	for i, p := range schema.Periods {
		cutoffs[i] = MonthsBefore(now, p.Months)
		buckets[p.Label] = []schema.Patent{}
	}
	for _, pat := range patents {
		od, ok := ParseOpenDate(pat.OpenDate, now.Location())
		if !ok {
			continue
		}
		for i, p := range schema.Periods {
			if inWindow(od, cutoffs[i], now) {
				buckets[p.Label] = append(buckets[p.Label], pat)
			}
		}
	}
	return buckets
}
