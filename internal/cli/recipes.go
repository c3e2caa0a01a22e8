package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/otiai10/recipebox/internal/recipe"
)

// DefaultImportConcurrency bounds the parallel creates of "recipes import"
const DefaultImportConcurrency = 4

// NewRecipesCommand creates the recipes command group.
func NewRecipesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipes",
		Aliases: []string{"recipe"},
		Short:   "Browse, publish and review recipes",
	}

	cmd.AddCommand(newRecipesListCommand(rootOpts))
	cmd.AddCommand(newRecipesSearchCommand(rootOpts))
	cmd.AddCommand(newRecipesShowCommand(rootOpts))
	cmd.AddCommand(newRecipesByCommand(rootOpts))
	cmd.AddCommand(newRecipesCreateCommand(rootOpts))
	cmd.AddCommand(newRecipesImportCommand(rootOpts))
	cmd.AddCommand(newRecipesEditCommand(rootOpts))
	cmd.AddCommand(newRecipesDeleteCommand(rootOpts))
	cmd.AddCommand(newRecipesReviewCommand(rootOpts))

	return cmd
}

func newRecipesListCommand(rootOpts *RootOptions) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(e *env) error {
				if _, err := e.session.Recipes.LoadAll(e.ctx()); err != nil {
					return err
				}
				list := e.session.Recipes.Search(query)
				return e.out.Success(list, func(w io.Writer) { writeRecipeList(w, list) })
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "only list recipes whose title contains this text")
	return cmd
}

func newRecipesSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Suggest up to five recipes whose title contains text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(e *env) error {
				if _, err := e.session.Recipes.LoadAll(e.ctx()); err != nil {
					return err
				}
				list := e.session.Recipes.Suggestions(args[0])
				return e.out.Success(list, func(w io.Writer) { writeRecipeList(w, list) })
			})
		},
	}
}

func newRecipesShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recipe with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(e *env) error {
				rec, err := e.session.Recipes.FetchOne(e.ctx(), args[0])
				if err != nil {
					return err
				}
				return e.out.Success(rec, func(w io.Writer) { writeRecipe(w, *rec) })
			})
		},
	}
}

func newRecipesByCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "by <uid>",
		Short: "List the recipes of one author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(e *env) error {
				list, err := e.session.Recipes.ListByAuthor(e.ctx(), args[0])
				if err != nil {
					return err
				}
				return e.out.Success(list, func(w io.Writer) { writeRecipeList(w, list) })
			})
		},
	}
}

func newRecipesCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var file, image string

	cmd := &cobra.Command{
		Use:   "create --file recipe.yaml",
		Short: "Publish a recipe",
		Long: `Publish a recipe read from a YAML file ("-" for stdin).

The image field, or --image, may be a URL or a local file, which is
uploaded first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var d recipe.Draft
			if err := readYAML(file, cmd.InOrStdin(), &d); err != nil {
				return err
			}
			if image != "" {
				d.Image = image
			}

			return withSession(cmd, rootOpts, func(e *env) error {
				url, err := resolveImage(e.ctx(), e.app.Uploader(), dirOf(file), d.Image)
				if err != nil {
					return err
				}
				d.Image = url

				rec, err := e.session.Recipes.Create(e.ctx(), d)
				if err != nil {
					return err
				}
				return e.out.Success(rec, func(w io.Writer) { writeRecipeLine(w, *rec) })
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "recipe YAML file")
	cmd.Flags().StringVar(&image, "image", "", "image URL or local file, overrides the file's image")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// importResult reports one recipe of an import
type importResult struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

func newRecipesImportCommand(rootOpts *RootOptions) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "import <recipes.yaml>",
		Short: "Publish every recipe in a YAML list",
		Long: `Publish every recipe in a YAML sequence of recipes.

Recipes are created in parallel. The first failure stops the import;
recipes created before it stay published.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency < 1 {
				return NewExitError(ExitCommandError, "--concurrency must be at least 1")
			}

			var drafts []recipe.Draft
			if err := readYAML(args[0], cmd.InOrStdin(), &drafts); err != nil {
				return err
			}

			return withSession(cmd, rootOpts, func(e *env) error {
				results := make([]*importResult, len(drafts))

				g, ctx := errgroup.WithContext(e.ctx())
				g.SetLimit(concurrency)
				for i, d := range drafts {
					i, d := i, d
					g.Go(func() error {
						url, err := resolveImage(ctx, e.app.Uploader(), dirOf(args[0]), d.Image)
						if err != nil {
							return fmt.Errorf("recipe %d: %w", i+1, err)
						}
						d.Image = url

						rec, err := e.session.Recipes.Create(ctx, d)
						if err != nil {
							return fmt.Errorf("recipe %d (%q): %w", i+1, d.Title, err)
						}
						results[i] = &importResult{Index: i + 1, ID: rec.ID, Title: rec.Title}
						return nil
					})
				}
				importErr := g.Wait()

				created := make([]importResult, 0, len(results))
				for _, r := range results {
					if r != nil {
						created = append(created, *r)
					}
				}

				if importErr != nil {
					for _, r := range created {
						fmt.Fprintf(cmd.ErrOrStderr(), "created %s  %s\n", r.ID, r.Title)
					}
					return importErr
				}

				return e.out.Success(created, func(w io.Writer) {
					for _, r := range created {
						fmt.Fprintf(w, "created %s  %s\n", r.ID, r.Title)
					}
					fmt.Fprintf(w, "imported %d recipe(s)\n", len(created))
				})
			})
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", DefaultImportConcurrency, "maximum number of recipes created at once")
	return cmd
}

func newRecipesEditCommand(rootOpts *RootOptions) *cobra.Command {
	var file, image string

	cmd := &cobra.Command{
		Use:   "edit <id> --file patch.yaml",
		Short: "Change your own recipe",
		Long: `Change your own recipe. The YAML file lists only the fields to change;
fields left out keep their current value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch recipe.Patch
			if file != "" {
				if err := readYAML(file, cmd.InOrStdin(), &patch); err != nil {
					return err
				}
			}
			if image != "" {
				patch.Image = &image
			}
			if patch.IsEmpty() {
				return NewExitError(ExitCommandError, "nothing to change: pass --file or --image")
			}

			return withSession(cmd, rootOpts, func(e *env) error {
				if _, err := e.session.Recipes.RequireAuthor(e.ctx(), args[0]); err != nil {
					return err
				}

				if patch.Image != nil {
					url, err := resolveImage(e.ctx(), e.app.Uploader(), dirOf(file), *patch.Image)
					if err != nil {
						return err
					}
					patch.Image = &url
				}

				rec, err := e.session.Recipes.Update(e.ctx(), args[0], patch)
				if err != nil {
					return err
				}
				return e.out.Success(rec, func(w io.Writer) { writeRecipeLine(w, *rec) })
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file with the fields to change")
	cmd.Flags().StringVar(&image, "image", "", "new image URL or local file")
	return cmd
}

func newRecipesDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete your own recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(e *env) error {
				if _, err := e.session.Recipes.RequireAuthor(e.ctx(), args[0]); err != nil {
					return err
				}
				if err := e.session.Recipes.Delete(e.ctx(), args[0]); err != nil {
					return err
				}

				data := map[string]string{"id": args[0]}
				return e.out.Success(data, func(w io.Writer) { fmt.Fprintf(w, "deleted %s\n", args[0]) })
			})
		},
	}
}

func newRecipesReviewCommand(rootOpts *RootOptions) *cobra.Command {
	var in recipe.ReviewInput

	cmd := &cobra.Command{
		Use:   "review <id> --rating N --comment text",
		Short: "Rate and review a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(e *env) error {
				_, rec, err := e.session.Recipes.AddReview(e.ctx(), args[0], in)
				if err != nil {
					return err
				}
				return e.out.Success(rec, func(w io.Writer) {
					fmt.Fprintf(w, "%s  %s\n", rec.Title, ratingSummary(*rec))
				})
			})
		},
	}

	cmd.Flags().IntVarP(&in.Rating, "rating", "r", 0, "stars from 1 to 5")
	cmd.Flags().StringVarP(&in.Comment, "comment", "m", "", "review text, at least 10 characters")
	_ = cmd.MarkFlagRequired("rating")
	_ = cmd.MarkFlagRequired("comment")
	return cmd
}
