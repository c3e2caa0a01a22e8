package recipe

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReview builds a review by reviewer from a validated input.
// The reviewer's display name and avatar are copied into the review.
func NewReview(in ReviewInput, reviewer Author, now time.Time) (Review, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Review{}, fmt.Errorf("failed to generate review id: %w", err)
	}

	return Review{
		ID:              id.String(),
		UserID:          reviewer.ID,
		UserDisplayName: reviewer.Name,
		Avatar:          reviewer.Avatar,
		Rating:          in.Rating,
		Comment:         strings.TrimSpace(in.Comment),
		Date:            now,
	}, nil
}
