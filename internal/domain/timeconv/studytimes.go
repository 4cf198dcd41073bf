package timeconv

import "fmt"

// Study-time buckets offered at registration, in local time.
const (
	Mornings   = "Mornings"
	Afternoons = "Afternoons"
	Evenings   = "Evenings"
	LateNights = "Late Nights"
)

var studyTimeRanges = map[string][2]string{
	Mornings:   {"08:00", "12:00"},
	Afternoons: {"13:00", "17:00"},
	Evenings:   {"18:00", "22:00"},
	LateNights: {"22:00", "02:00"},
}

// StudyTimeRange returns the local start and end of a study-time bucket.
// Late Nights ends after midnight.
func StudyTimeRange(bucket string) (Clock, Clock, error) {
	r, ok := studyTimeRanges[bucket]
	if !ok {
		return 0, 0, fmt.Errorf("%w: unknown study time %q", ErrFormat, bucket)
	}
	return MustClock(r[0]), MustClock(r[1]), nil
}
