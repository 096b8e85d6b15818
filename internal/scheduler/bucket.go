package scheduler

import "sort"

// UnscheduledKey names the bucket of calendar slots that carry no date.
const UnscheduledKey = "__unscheduled__"

// DaysPerWeek is the number of weekly buckets.
const DaysPerWeek = 7

// WeekBuckets holds weekly slots by Monday based index.
type WeekBuckets [DaysPerWeek][]Slot

// DateBucket groups calendar slots sharing a date.
type DateBucket struct {
	Key   string
	Date  Date
	Slots []Slot
}

// Unscheduled reports whether the bucket collects undated slots.
func (b DateBucket) Unscheduled() bool {
	return b.Key == UnscheduledKey
}

// BucketByWeekday places slots into seven Monday first buckets, each ordered
// by start time. Days outside 0..6 are ignored.
func BucketByWeekday(slots []Slot) WeekBuckets {
	var buckets WeekBuckets
	for _, slot := range slots {
		if !ValidDayOfWeek(slot.DayOfWeek) {
			continue
		}
		idx := WeekdayIndex(slot.DayOfWeek)
		buckets[idx] = append(buckets[idx], slot)
	}
	for i := range buckets {
		sortByStart(buckets[i])
	}
	return buckets
}

// BucketByDate groups slots by date in ascending order. Undated slots land in
// a final bucket keyed UnscheduledKey.
func BucketByDate(slots []Slot) []DateBucket {
	index := make(map[string]int)
	buckets := make([]DateBucket, 0)
	for _, slot := range slots {
		key := UnscheduledKey
		if slot.HasDate() {
			key = slot.Date.String()
		}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, DateBucket{Key: key, Date: slot.Date})
		}
		buckets[i].Slots = append(buckets[i].Slots, slot)
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if a.Unscheduled() != b.Unscheduled() {
			return !a.Unscheduled()
		}
		return a.Date.Before(b.Date)
	})
	for i := range buckets {
		sortByStart(buckets[i].Slots)
	}
	return buckets
}

func sortByStart(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartTime.Minutes() < slots[j].StartTime.Minutes()
	})
}
