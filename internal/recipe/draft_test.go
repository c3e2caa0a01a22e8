package recipe

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return Draft{
		Title:        "Miso Soup",
		Ingredients:  []string{"dashi", "miso", "tofu", "wakame", "scallion"},
		Instructions: []string{"heat dashi", "add tofu", "add wakame", "dissolve miso", "garnish"},
		CookingTime:  "15 min",
		Difficulty:   DifficultyEasy,
		Image:        "https://storage.googleapis.com/recipebox-assets/miso.jpg",
	}
}

func TestNormalizeLines(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"trims and drops blanks", []string{"  egg ", "", "   ", "rice"}, []string{"egg", "rice"}},
		{"splits on line breaks", []string{"egg\nrice\r\n\nnori"}, []string{"egg", "rice", "nori"}},
		{"keeps order", []string{"b", "a\nc"}, []string{"b", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLines(tt.in))
		})
	}
}

func TestNormalizeCookingTime(t *testing.T) {
	assert.Equal(t, "30 min", NormalizeCookingTime(" 30 "))
	assert.Equal(t, "1 hour", NormalizeCookingTime("1 hour"))
	assert.Equal(t, "", NormalizeCookingTime("  "))
}

func TestDraft_Normalized(t *testing.T) {
	d := Draft{
		Title:        "  Onigiri ",
		Ingredients:  []string{"rice\nsalt\n", " nori "},
		Instructions: []string{"cook rice", ""},
		CookingTime:  "20",
		Image:        " https://example.com/a.png ",
	}

	got := d.Normalized()
	assert.Equal(t, "Onigiri", got.Title)
	assert.Equal(t, []string{"rice", "salt", "nori"}, got.Ingredients)
	assert.Equal(t, []string{"cook rice"}, got.Instructions)
	assert.Equal(t, "20 min", got.CookingTime)
	assert.Equal(t, "https://example.com/a.png", got.Image)
}

func TestValidator_ValidateDraft(t *testing.T) {
	v := Validator{}

	require.NoError(t, v.ValidateDraft(validDraft()))

	tests := []struct {
		name   string
		mutate func(*Draft)
		field  string
	}{
		{"short title", func(d *Draft) { d.Title = "Pho" }, "Title"},
		{"missing title", func(d *Draft) { d.Title = "" }, "Title"},
		{"too few ingredients", func(d *Draft) { d.Ingredients = d.Ingredients[:4] }, "Ingredients"},
		{"too few instructions", func(d *Draft) { d.Instructions = d.Instructions[:1] }, "Instructions"},
		{"missing cooking time", func(d *Draft) { d.CookingTime = "" }, "CookingTime"},
		{"unknown difficulty", func(d *Draft) { d.Difficulty = "Extreme" }, "Difficulty"},
		{"insecure image", func(d *Draft) { d.Image = "http://example.com/a.png" }, "Image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)

			err := v.ValidateDraft(d)
			require.Error(t, err)

			var errs validation.Errors
			require.ErrorAs(t, err, &errs)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestValidator_ValidateDraft_ImageOptional(t *testing.T) {
	d := validDraft()
	d.Image = ""
	assert.NoError(t, Validator{}.ValidateDraft(d))
}

func TestValidator_ValidateDraft_LocalAssets(t *testing.T) {
	d := validDraft()
	d.Image = "http://localhost:9199/miso.jpg"

	assert.Error(t, Validator{}.ValidateDraft(d))
	assert.NoError(t, Validator{AllowLocalAssets: true}.ValidateDraft(d))
}

func TestValidator_ValidatePatch(t *testing.T) {
	v := Validator{}
	title := "Ramen"
	short := "Tea"
	blank := ""
	few := []string{"noodles"}
	hard := DifficultyHard
	bad := Difficulty("Impossible")

	assert.NoError(t, v.ValidatePatch(Patch{}))
	assert.NoError(t, v.ValidatePatch(Patch{Title: &title, Difficulty: &hard}))
	assert.Error(t, v.ValidatePatch(Patch{Title: &short}))
	assert.Error(t, v.ValidatePatch(Patch{Title: &blank}))
	assert.Error(t, v.ValidatePatch(Patch{Ingredients: &few}))
	assert.Error(t, v.ValidatePatch(Patch{Difficulty: &bad}))
	assert.Error(t, v.ValidatePatch(Patch{CookingTime: &blank}))
}

func TestPatch_Apply(t *testing.T) {
	rec := New(validDraft(), NewAuthor("u1", "Chef One", ""), fixedTime)
	rec.ID = "r1"

	title := "Miso Soup Deluxe"
	ingredients := []string{"a", "b", "c", "d", "e", "f"}
	p := Patch{Title: &title, Ingredients: &ingredients}

	got := p.Apply(rec)
	assert.Equal(t, "Miso Soup Deluxe", got.Title)
	assert.Equal(t, ingredients, got.Ingredients)
	assert.Equal(t, rec.Instructions, got.Instructions)
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, "Miso Soup", rec.Title, "original must not change")

	ingredients[0] = "mutated"
	assert.Equal(t, "a", got.Ingredients[0], "applied recipe must not alias the patch")
}

func TestPatch_IsEmpty(t *testing.T) {
	assert.True(t, Patch{}.IsEmpty())

	image := ""
	assert.False(t, Patch{Image: &image}.IsEmpty())
}

func TestPatch_Normalized(t *testing.T) {
	lines := []string{" a\nb ", ""}
	minutes := "45"
	p := Patch{Ingredients: &lines, CookingTime: &minutes}.Normalized()

	assert.Equal(t, []string{"a", "b"}, *p.Ingredients)
	assert.Equal(t, "45 min", *p.CookingTime)
	assert.Nil(t, p.Title)
}

func TestReviewInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      ReviewInput
		wantErr bool
	}{
		{"valid", ReviewInput{Rating: 4, Comment: "Lovely and warming"}, false},
		{"rating zero", ReviewInput{Rating: 0, Comment: "Lovely and warming"}, true},
		{"rating six", ReviewInput{Rating: 6, Comment: "Lovely and warming"}, true},
		{"short comment", ReviewInput{Rating: 5, Comment: "Nice"}, true},
		{"padded short comment", ReviewInput{Rating: 5, Comment: "   Nice!!      "}, true},
		{"exactly ten", ReviewInput{Rating: 1, Comment: "0123456789"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
