package domain

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// IsValidRating checks that r is within [MinRating, MaxRating].
func IsValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// AverageRating is the arithmetic mean of ratings, 0 when there are none.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum int
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}
