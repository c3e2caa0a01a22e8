package cli

import (
	"fmt"
	"io"

	"github.com/otiai10/recipebox/internal/recipe"
	"github.com/otiai10/recipebox/internal/user"
	"github.com/otiai10/recipebox/internal/username"
)

const dateLayout = "2006-01-02"

func ratingSummary(r recipe.Recipe) string {
	switch r.ReviewCount {
	case 0:
		return "no reviews"
	case 1:
		return fmt.Sprintf("%.1f (1 review)", r.Rating)
	default:
		return fmt.Sprintf("%.1f (%d reviews)", r.Rating, r.ReviewCount)
	}
}

func writeRecipeLine(w io.Writer, r recipe.Recipe) {
	fmt.Fprintf(w, "%s  %s  [%s, %s]  %s  by %s\n",
		r.ID, r.Title, r.Difficulty, r.CookingTime, ratingSummary(r), r.Author.Name)
}

func writeRecipeList(w io.Writer, list []recipe.Recipe) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no recipes")
		return
	}
	for _, r := range list {
		writeRecipeLine(w, r)
	}
}

func writeRecipe(w io.Writer, r recipe.Recipe) {
	fmt.Fprintln(w, r.Title)
	fmt.Fprintf(w, "id: %s\n", r.ID)
	fmt.Fprintf(w, "by %s on %s\n", r.Author.Name, r.CreatedAt.Format(dateLayout))
	if r.UpdatedAt != nil {
		fmt.Fprintf(w, "edited %s\n", r.UpdatedAt.Format(dateLayout))
	}
	fmt.Fprintf(w, "%s, %s, %s\n", r.Difficulty, r.CookingTime, ratingSummary(r))
	if r.Image != "" {
		fmt.Fprintf(w, "image: %s\n", r.Image)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ingredients")
	for _, item := range r.Ingredients {
		fmt.Fprintf(w, "  - %s\n", item)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Instructions")
	for i, step := range r.Instructions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Reviews")
	if len(r.Reviews) == 0 {
		fmt.Fprintln(w, "  none yet")
	}
	for _, rev := range r.Reviews {
		fmt.Fprintf(w, "  %d/5 %s (%s): %s\n",
			rev.Rating, rev.UserDisplayName, rev.Date.Format(dateLayout), rev.Comment)
	}
}

func writeProfile(w io.Writer, u user.User) {
	if !u.IsComplete() {
		fmt.Fprintf(w, "%s  (profile setup pending)\n", u.ID)
	} else {
		fmt.Fprintf(w, "@%s  %s\n", u.Username, u.DisplayName)
	}
	if u.Email != "" {
		fmt.Fprintf(w, "email: %s\n", u.Email)
	}
	if u.Bio != "" {
		fmt.Fprintf(w, "bio: %s\n", u.Bio)
	}
	if u.PhotoURL != "" {
		fmt.Fprintf(w, "photo: %s\n", u.PhotoURL)
	}
	fmt.Fprintf(w, "joined %s\n", u.CreatedAt.Format(dateLayout))
}

// checkOutput is one line of "profile check" output
type checkOutput struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

func newCheckOutput(r username.Result) checkOutput {
	out := checkOutput{Username: r.Candidate, Available: r.Available}
	if r.Err != nil {
		out.Available = false
		out.Error = r.Err.Error()
	}
	return out
}

func writeCheck(w io.Writer, c checkOutput) {
	switch {
	case c.Error != "":
		fmt.Fprintf(w, "%s  error: %s\n", c.Username, c.Error)
	case c.Available:
		fmt.Fprintf(w, "%s  available\n", c.Username)
	default:
		fmt.Fprintf(w, "%s  taken\n", c.Username)
	}
}
