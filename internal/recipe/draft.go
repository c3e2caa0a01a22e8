package recipe

import (
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/otiai10/recipebox/internal/security"
)

// Minimum sizes accepted for a recipe
const (
	MinTitleLength     = 5
	MinIngredients     = 5
	MinInstructions    = 5
	MinCommentLength   = 10
	cookingTimeMinutes = " min"
)

// Draft is the user-supplied content of a new recipe
type Draft struct {
	Title        string     `yaml:"title"`
	Ingredients  []string   `yaml:"ingredients"`
	Instructions []string   `yaml:"instructions"`
	CookingTime  string     `yaml:"cookingTime"`
	Difficulty   Difficulty `yaml:"difficulty"`
	Image        string     `yaml:"image"`
}

// Normalized returns a copy of d with list fields split into trimmed,
// non-blank lines and a bare number of minutes expanded to "N min".
func (d Draft) Normalized() Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Ingredients = NormalizeLines(d.Ingredients)
	d.Instructions = NormalizeLines(d.Instructions)
	d.CookingTime = NormalizeCookingTime(d.CookingTime)
	d.Image = strings.TrimSpace(d.Image)
	return d
}

// Patch is a partial update of a recipe. Nil fields are left unchanged.
type Patch struct {
	Title        *string     `yaml:"title"`
	Ingredients  *[]string   `yaml:"ingredients"`
	Instructions *[]string   `yaml:"instructions"`
	CookingTime  *string     `yaml:"cookingTime"`
	Difficulty   *Difficulty `yaml:"difficulty"`
	Image        *string     `yaml:"image"`
}

// IsEmpty reports whether p changes nothing
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Ingredients == nil && p.Instructions == nil &&
		p.CookingTime == nil && p.Difficulty == nil && p.Image == nil
}

// Normalized applies the Draft normalization to the fields p sets
func (p Patch) Normalized() Patch {
	if p.Title != nil {
		v := strings.TrimSpace(*p.Title)
		p.Title = &v
	}
	if p.Ingredients != nil {
		v := NormalizeLines(*p.Ingredients)
		p.Ingredients = &v
	}
	if p.Instructions != nil {
		v := NormalizeLines(*p.Instructions)
		p.Instructions = &v
	}
	if p.CookingTime != nil {
		v := NormalizeCookingTime(*p.CookingTime)
		p.CookingTime = &v
	}
	if p.Image != nil {
		v := strings.TrimSpace(*p.Image)
		p.Image = &v
	}
	return p
}

// Apply returns a copy of r with the fields of p applied
func (p Patch) Apply(r Recipe) Recipe {
	out := r.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Ingredients != nil {
		out.Ingredients = append([]string(nil), (*p.Ingredients)...)
	}
	if p.Instructions != nil {
		out.Instructions = append([]string(nil), (*p.Instructions)...)
	}
	if p.CookingTime != nil {
		out.CookingTime = *p.CookingTime
	}
	if p.Difficulty != nil {
		out.Difficulty = *p.Difficulty
	}
	if p.Image != nil {
		out.Image = *p.Image
	}
	return out
}

// ReviewInput is the user-supplied part of a review
type ReviewInput struct {
	Rating  int
	Comment string
}

// Validate implements validation.Validatable
func (in ReviewInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Rating,
			validation.Required.Error("rating is required"),
			validation.Min(1).Error("rating must be between 1 and 5"),
			validation.Max(5).Error("rating must be between 1 and 5"),
		),
		validation.Field(&in.Comment,
			validation.By(minTrimmedLength(MinCommentLength, "comment must be at least 10 characters")),
		),
	)
}

// Validator checks drafts and patches before they are stored
type Validator struct {
	// AllowLocalAssets permits http://localhost image URLs (development mode)
	AllowLocalAssets bool
}

// ValidateDraft validates a normalized draft
func (v Validator) ValidateDraft(d Draft) error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(MinTitleLength, 0).Error("title must be at least 5 characters"),
		),
		validation.Field(&d.Ingredients,
			validation.Required.Error("ingredients are required"),
			validation.Length(MinIngredients, 0).Error("at least 5 ingredients are required"),
		),
		validation.Field(&d.Instructions,
			validation.Required.Error("instructions are required"),
			validation.Length(MinInstructions, 0).Error("at least 5 instructions are required"),
		),
		validation.Field(&d.CookingTime, validation.Required.Error("cooking time is required")),
		validation.Field(&d.Difficulty,
			validation.Required.Error("difficulty is required"),
			validation.In(DifficultyEasy, DifficultyMedium, DifficultyHard).Error("difficulty must be Easy, Medium or Hard"),
		),
		validation.Field(&d.Image, security.AssetURL(v.AllowLocalAssets)),
	)
}

// ValidatePatch validates the fields a normalized patch sets against the
// same rules as ValidateDraft.
func (v Validator) ValidatePatch(p Patch) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title,
			validation.NilOrNotEmpty.Error("title cannot be blank"),
			validation.RuneLength(MinTitleLength, 0).Error("title must be at least 5 characters"),
		),
		validation.Field(&p.Ingredients,
			validation.When(p.Ingredients != nil, validation.By(minItems(MinIngredients, "at least 5 ingredients are required"))),
		),
		validation.Field(&p.Instructions,
			validation.When(p.Instructions != nil, validation.By(minItems(MinInstructions, "at least 5 instructions are required"))),
		),
		validation.Field(&p.CookingTime, validation.NilOrNotEmpty.Error("cooking time cannot be blank")),
		validation.Field(&p.Difficulty,
			validation.NilOrNotEmpty.Error("difficulty cannot be blank"),
			validation.In(DifficultyEasy, DifficultyMedium, DifficultyHard).Error("difficulty must be Easy, Medium or Hard"),
		),
		validation.Field(&p.Image, security.AssetURL(v.AllowLocalAssets)),
	)
}

// NormalizeLines splits every element on line breaks, trims each line and
// drops blank ones.
func NormalizeLines(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, line := range strings.FieldsFunc(item, isLineBreak) {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// NormalizeCookingTime trims s and appends " min" to a bare number
func NormalizeCookingTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return s
		}
	}
	return s + cookingTimeMinutes
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}

func minTrimmedLength(n int, msg string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if len([]rune(strings.TrimSpace(s))) < n {
			return validation.NewError("validation_min_length", msg)
		}
		return nil
	}
}

func minItems(n int, msg string) validation.RuleFunc {
	return func(value interface{}) error {
		items, _ := value.(*[]string)
		if items == nil || len(*items) < n {
			return validation.NewError("validation_min_items", msg)
		}
		return nil
	}
}
