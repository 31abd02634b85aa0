// Package itinerary implements the trip board: day partitioning, travel-segment
// estimation and reorder-intent handling for the itinerary builder.
package itinerary

import (
	"sort"
	"time"

	"github.com/tripdeck/tripdeck/internal/trip"
)

// Partition buckets items into per-day groups over the inclusive calendar-day
// range [tripStart, tripEnd]. Every day in the range gets a bucket, even when
// empty. An item lands in the bucket whose calendar date equals the date part
// of its StartAt; time-of-day is ignored for bucket selection. Items without a
// StartAt, or whose date falls outside the range, are placed in no bucket.
//
// Within a bucket items are sorted ascending by full StartAt. The sort is
// stable: items with equal timestamps keep their encounter order, so repeated
// calls with the same input produce identical bucket order.
//
// A range where tripStart is after tripEnd yields an empty partition.
func Partition(tripStart, tripEnd time.Time, items []*trip.Item) map[int][]*trip.Item {
	start := trip.DateOnly(tripStart)
	end := trip.DateOnly(tripEnd)

	buckets := make(map[int][]*trip.Item)
	if end.Before(start) {
		return buckets
	}

	dayCount := trip.DaysBetween(start, end) + 1
	for day := 0; day < dayCount; day++ {
		buckets[day] = nil
	}

	for _, item := range items {
		if item.StartAt == nil {
			continue
		}
		day := trip.DateOnly(*item.StartAt)
		if day.Before(start) || day.After(end) {
			continue
		}
		idx := trip.DaysBetween(start, day)
		buckets[idx] = append(buckets[idx], item)
	}

	for idx := range buckets {
		bucket := buckets[idx]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].StartAt.Before(*bucket[j].StartAt)
		})
	}

	return buckets
}

// Unscheduled returns the items that carry no StartAt, in encounter order.
// Partition drops these from every bucket; the board surfaces them separately
// so they do not silently disappear from API consumers.
func Unscheduled(items []*trip.Item) []*trip.Item {
	var out []*trip.Item
	for _, item := range items {
		if item.StartAt == nil {
			out = append(out, item)
		}
	}
	return out
}

// DayDate returns the calendar date of the given zero-based day index.
func DayDate(tripStart time.Time, dayIndex int) time.Time {
	return trip.DateOnly(tripStart).AddDate(0, 0, dayIndex)
}
