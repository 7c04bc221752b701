package domain

import "time"

// MaxCommentLength bounds Review.Comment.
const MaxCommentLength = 2000

// Review is a rating left by a user on a product.
type Review struct {
	ID        int64     `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	AuthorID  int64     `json:"author_id"`
	ProductID int64     `json:"product_id"`
}

// ReviewSummary holds aggregated review statistics for a product.
type ReviewSummary struct {
	ProductID     int64   `json:"product_id"`
	AverageRating float64 `json:"average_rating"`
	TotalCount    int     `json:"total_count"`
}

// SummarizeReviews computes the average over reviews.
func SummarizeReviews(productID int64, reviews []Review) ReviewSummary {
	ratings := make([]int, len(reviews))
	for i, r := range reviews {
		ratings[i] = r.Rating
	}
	return ReviewSummary{
		ProductID:     productID,
		AverageRating: AverageRating(ratings),
		TotalCount:    len(reviews),
	}
}
