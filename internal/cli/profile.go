package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/otiai10/recipebox/internal/user"
	"github.com/otiai10/recipebox/internal/username"
)

// stdinCheckTimeout bounds the wait for the last debounced check after input ends
const stdinCheckTimeout = 30 * time.Second

// NewProfileCommand creates the profile command group.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Sign up and manage your profile",
	}

	cmd.AddCommand(newProfileSignupCommand(rootOpts))
	cmd.AddCommand(newProfileSetupCommand(rootOpts))
	cmd.AddCommand(newProfileShowCommand(rootOpts))
	cmd.AddCommand(newProfileEditCommand(rootOpts))
	cmd.AddCommand(newProfileCheckCommand(rootOpts))

	return cmd
}

func newProfileSignupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create your profile after signing in for the first time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(e *env) error {
				u, err := e.session.Profiles.Signup(e.ctx())
				if err != nil {
					return err
				}
				return e.out.Success(u, func(w io.Writer) { writeProfile(w, *u) })
			})
		},
	}
}

func newProfileSetupCommand(rootOpts *RootOptions) *cobra.Command {
	var in user.ProfileSetup

	cmd := &cobra.Command{
		Use:   "setup --username name --display-name name",
		Short: "Choose your username and display name",
		Long: `Complete your profile. This can be done once; the username cannot be
changed afterwards. --photo may be a URL or a local file, which is uploaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(e *env) error {
				photo, err := resolveImage(e.ctx(), e.app.Uploader(), "", in.PhotoURL)
				if err != nil {
					return err
				}
				in.PhotoURL = photo

				u, err := e.session.Profiles.Setup(e.ctx(), in)
				if err != nil {
					return err
				}
				return e.out.Success(u, func(w io.Writer) { writeProfile(w, *u) })
			})
		},
	}

	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "username, 3 to 15 of a-z, 0-9 and _")
	cmd.Flags().StringVarP(&in.DisplayName, "display-name", "n", "", "name shown on your recipes and reviews")
	cmd.Flags().StringVar(&in.Bio, "bio", "", "short introduction")
	cmd.Flags().StringVar(&in.PhotoURL, "photo", "", "photo URL or local file")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("display-name")
	return cmd
}

func newProfileShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [username]",
		Short: "Show your profile, or another user's",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(e *env) error {
				var (
					u   *user.User
					err error
				)
				if len(args) == 1 {
					u, err = e.session.Profiles.FindByUsername(e.ctx(), args[0])
				} else {
					u, err = e.session.Profiles.Me(e.ctx())
				}
				if err != nil {
					return err
				}
				return e.out.Success(u, func(w io.Writer) { writeProfile(w, *u) })
			})
		},
	}
}

func newProfileEditCommand(rootOpts *RootOptions) *cobra.Command {
	var in user.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change your username, display name, bio or photo",
		Long: `Change your username, display name, bio or photo. Flags left out keep
their current value. A new username must be available; your old one is
released.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("username") && !flags.Changed("display-name") && !flags.Changed("bio") && !flags.Changed("photo") {
				return NewExitError(ExitCommandError, "nothing to change: pass --username, --display-name, --bio or --photo")
			}

			return withSession(cmd, rootOpts, func(e *env) error {
				current, err := e.session.Profiles.Me(e.ctx())
				if err != nil {
					return err
				}
				if !flags.Changed("display-name") {
					in.DisplayName = current.DisplayName
				}
				if !flags.Changed("bio") {
					in.Bio = current.Bio
				}

				photo, err := resolveImage(e.ctx(), e.app.Uploader(), "", in.PhotoURL)
				if err != nil {
					return err
				}
				in.PhotoURL = photo

				u, err := e.session.Profiles.Update(e.ctx(), in)
				if err != nil {
					return err
				}
				return e.out.Success(u, func(w io.Writer) { writeProfile(w, *u) })
			})
		},
	}

	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "new username, 3 to 15 of a-z, 0-9 and _")
	cmd.Flags().StringVarP(&in.DisplayName, "display-name", "n", "", "name shown on your recipes and reviews")
	cmd.Flags().StringVar(&in.Bio, "bio", "", "short introduction")
	cmd.Flags().StringVar(&in.PhotoURL, "photo", "", "photo URL or local file")
	return cmd
}

func newProfileCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "check <username>...",
		Short: "Check whether usernames are available",
		Long: `Check whether usernames are available. Candidates are normalized the
way profile setup does. Your own username is reported available.

With --stdin, candidates are read one per line as they are typed and only
the latest one is checked once input pauses.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin == (len(args) > 0) {
				return NewExitError(ExitCommandError, "pass usernames as arguments or --stdin, not both")
			}

			return withSession(cmd, rootOpts, func(e *env) error {
				excluding := ""
				if me, err := e.session.Profiles.Me(e.ctx()); err == nil {
					excluding = me.Username
				}

				if fromStdin {
					return checkStdin(e, cmd.InOrStdin(), excluding)
				}

				results := make([]checkOutput, 0, len(args))
				for _, arg := range args {
					candidate := username.Normalize(arg)
					if err := username.Validate(candidate); err != nil {
						results = append(results, checkOutput{Username: candidate, Error: err.Error()})
						continue
					}
					available, err := e.session.Usernames.Check(e.ctx(), candidate, excluding)
					results = append(results, newCheckOutput(username.Result{
						Candidate: candidate, Available: available, Err: err,
					}))
				}

				return e.out.Success(results, func(w io.Writer) {
					for _, r := range results {
						writeCheck(w, r)
					}
				})
			})
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read candidates from stdin and check them as typing pauses")
	return cmd
}

// checkStdin feeds stdin lines through a Debouncer and prints each result
// as it arrives. After input ends it waits for the latest candidate's result.
func checkStdin(e *env, in io.Reader, excluding string) error {
	ctx := e.ctx()

	var (
		mu          sync.Mutex
		lastPrinted string
		printErr    error
	)
	notify := make(chan struct{}, 1)

	deliver := func(r username.Result) {
		mu.Lock()
		defer mu.Unlock()
		out := newCheckOutput(r)
		if err := e.out.Success(out, func(w io.Writer) { writeCheck(w, out) }); err != nil && printErr == nil {
			printErr = err
		}
		lastPrinted = r.Candidate
		select {
		case notify <- struct{}{}:
		default:
		}
	}

	d := username.NewDebouncer(e.session.Usernames, excluding, e.app.Config().Profile.UsernameCheckDelay, deliver)
	defer d.Stop()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		d.Submit(ctx, username.Normalize(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	final := d.Current()
	if final == "" {
		return nil
	}

	timeout := time.NewTimer(e.app.Config().Profile.UsernameCheckDelay + stdinCheckTimeout)
	defer timeout.Stop()

	for {
		mu.Lock()
		done, err := lastPrinted == final, printErr
		mu.Unlock()
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-notify:
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return errors.New("timed out waiting for the username check of " + final)
		}
	}
}
