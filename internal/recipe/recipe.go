// Package recipe defines recipes and their embedded reviews, together with
// the normalization and validation applied before they are stored.
package recipe

import (
	"net/url"
	"strings"
	"time"

	"github.com/otiai10/recipebox/internal/rating"
)

// Difficulty is the effort level of a recipe
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Difficulties lists every accepted difficulty
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// AnonymousName is the author name recorded when the author has no display name
const AnonymousName = "Anonymous"

// avatarServiceURL generates a placeholder avatar from a name
const avatarServiceURL = "https://ui-avatars.com/api/?name="

// Author is a snapshot of the recipe's author taken at creation time.
// It is never refreshed when the author's profile changes.
type Author struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Avatar string `json:"avatar" yaml:"avatar"`
}

// NewAuthor builds an author snapshot, filling in the anonymous name and
// a generated avatar when the profile lacks them.
func NewAuthor(uid, displayName, photoURL string) Author {
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = AnonymousName
	}

	return Author{
		ID:     uid,
		Name:   name,
		Avatar: AvatarOrDefault(photoURL, name),
	}
}

// AvatarOrDefault returns photoURL, or a generated avatar for name if it is empty
func AvatarOrDefault(photoURL, name string) string {
	if photoURL != "" {
		return photoURL
	}
	return avatarServiceURL + url.QueryEscape(name)
}

// Review is one user's rating and comment, embedded in its recipe.
// Reviews are immutable once appended.
type Review struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	UserDisplayName string    `json:"userDisplayName"`
	Avatar          string    `json:"avatar"`
	Rating          int       `json:"rating"`
	Comment         string    `json:"comment"`
	Date            time.Time `json:"date"`
}

// Recipe is a published recipe with its embedded reviews
type Recipe struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Ingredients  []string   `json:"ingredients"`
	Instructions []string   `json:"instructions"`
	CookingTime  string     `json:"cookingTime"`
	Difficulty   Difficulty `json:"difficulty"`
	Image        string     `json:"image,omitempty"`
	AuthorID     string     `json:"authorId"`
	Author       Author     `json:"author"`
	Rating       float64    `json:"rating"`
	ReviewCount  int        `json:"reviewCount"`
	Reviews      []Review   `json:"reviews"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// New builds an unsaved recipe from a normalized draft
func New(d Draft, author Author, now time.Time) Recipe {
	return Recipe{
		Title:        d.Title,
		Ingredients:  d.Ingredients,
		Instructions: d.Instructions,
		CookingTime:  d.CookingTime,
		Difficulty:   d.Difficulty,
		Image:        d.Image,
		AuthorID:     author.ID,
		Author:       author,
		Rating:       0,
		ReviewCount:  0,
		Reviews:      []Review{},
		CreatedAt:    now,
	}
}

// Aggregate returns the recipe's stored rating aggregate
func (r Recipe) Aggregate() rating.Aggregate {
	return rating.Aggregate{Average: r.Rating, Count: r.ReviewCount}
}

// Ratings returns the star rating of every review in order
func (r Recipe) Ratings() []int {
	stars := make([]int, len(r.Reviews))
	for i, rev := range r.Reviews {
		stars[i] = rev.Rating
	}
	return stars
}

// WithReview returns a copy of r with rev appended. The stored aggregate
// is advanced with rating.Apply; when that disagrees with the mean of the
// full review list (rounding drift or a stale stored aggregate) the full
// list wins.
func (r Recipe) WithReview(rev Review) Recipe {
	out := r.Clone()
	out.Reviews = append(out.Reviews, rev)

	agg, err := rating.Apply(r.Aggregate(), rev.Rating)
	if full := rating.FromRatings(out.Ratings()); err != nil || agg != full {
		agg = full
	}
	out.Rating = agg.Average
	out.ReviewCount = agg.Count

	return out
}

// Clone returns a deep copy of r
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = append([]string(nil), r.Ingredients...)
	out.Instructions = append([]string(nil), r.Instructions...)
	out.Reviews = append([]Review(nil), r.Reviews...)
	if out.Reviews == nil {
		out.Reviews = []Review{}
	}
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
