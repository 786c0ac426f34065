package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gangsheet/pkg/errors"
	"github.com/matzehuels/gangsheet/pkg/pipeline"
	"github.com/matzehuels/gangsheet/pkg/session"
)

// sessionCommand groups the commands that build up a batch across calls.
func (c *CLI) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Collect designs over several calls, then build them together",
		Long: `A session is a list of designs kept on disk between calls, so an order can
be assembled one design at a time:

  gangsheet session add shirt.png:back:12
  gangsheet session add logo.png --pick
  gangsheet session build -o order-118.zip

The session is emptied after a successful build.`,
	}

	cmd.AddCommand(c.sessionAddCommand())
	cmd.AddCommand(c.sessionListCommand())
	cmd.AddCommand(c.sessionRemoveCommand())
	cmd.AddCommand(c.sessionResetCommand())
	cmd.AddCommand(c.sessionBuildCommand())

	return cmd
}

// openSession loads the CLI working session.
func openSession(ctx context.Context) (*session.CLIStore, *session.Session, error) {
	dir, err := sessionDir()
	if err != nil {
		return nil, nil, fmt.Errorf("get session dir: %w", err)
	}
	store, err := session.NewCLIStore(dir)
	if err != nil {
		return nil, nil, err
	}
	sess, err := store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return store, sess, nil
}

func (c *CLI) sessionAddCommand() *cobra.Command {
	var (
		category string
		pick     bool
	)

	cmd := &cobra.Command{
		Use:               "add <design>...",
		Short:             "Add designs to the session",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeDesignArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts, err := c.loadOptions()
			if err != nil {
				return err
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			cat := opts.Catalog()

			designs, err := parseDesignArgs(args, category)
			if err != nil {
				return err
			}
			if pick {
				if err := pickMissing(designs, cat); err != nil {
					return err
				}
			}

			store, sess, err := openSession(ctx)
			if err != nil {
				return err
			}

			// Categories are resolved now so mistakes surface at add time.
			for _, d := range designs {
				tag, err := cat.Parse(d.Label)
				if err != nil {
					return err
				}
				path, err := filepath.Abs(d.Path)
				if err != nil {
					return err
				}
				e, err := sess.Add(session.Entry{
					Name:     filepath.Base(path),
					Path:     path,
					Category: tag,
					Copies:   d.Copies,
				})
				if err != nil {
					return err
				}
				printSuccess("Added %s %s", StyleValue.Render(e.Name),
					StyleDim.Render(fmt.Sprintf("%s × %d", e.Category, e.Copies)))
			}

			if err := store.Save(ctx, sess); err != nil {
				return err
			}
			printDetail("%d designs, %d copies in session", sess.Len(), sess.Copies())
			printNextStep("Build it", appName+" session build")
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category for designs given without one")
	cmd.Flags().BoolVar(&pick, "pick", false, "choose the category interactively")
	return cmd
}

func (c *CLI) sessionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the designs in the session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sess, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			if sess.Len() == 0 {
				printInfo("Session is empty")
				return nil
			}
			fmt.Println(sessionTable(sess))
			printDetail("%d designs, %d copies", sess.Len(), sess.Copies())
			return nil
		},
	}
}

// sessionTable renders the session entries.
func sessionTable(sess *session.Session) string {
	rows := make([][]string, len(sess.Entries))
	for i, e := range sess.Entries {
		rows[i] = []string{shortID(e.ID), e.Name, string(e.Category), fmt.Sprint(e.Copies)}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Design", "Category", "Copies").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (c *CLI) sessionRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a design from the session (IDs as shown by list)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, sess, err := openSession(ctx)
			if err != nil {
				return err
			}
			id, err := matchEntry(sess, args[0])
			if err != nil {
				return err
			}
			sess.Remove(id)
			if err := store.Save(ctx, sess); err != nil {
				return err
			}
			printSuccess("Removed %s", shortID(id))
			return nil
		},
	}
}

// matchEntry resolves a unique ID prefix.
func matchEntry(sess *session.Session, prefix string) (string, error) {
	var found []string
	for _, e := range sess.Entries {
		if strings.HasPrefix(e.ID, prefix) {
			found = append(found, e.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", errors.New(errors.ErrCodeNotFound, "no design with ID %q in session", prefix)
	case 1:
		return found[0], nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "ID %q is ambiguous (%d matches)", prefix, len(found))
	}
}

func (c *CLI) sessionResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove every design from the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, sess, err := openSession(ctx)
			if err != nil {
				return err
			}
			n := sess.Len()
			sess.Reset()
			if err := store.Save(ctx, sess); err != nil {
				return err
			}
			printSuccess("Cleared %d designs", n)
			return nil
		},
	}
}

func (c *CLI) sessionBuildCommand() *cobra.Command {
	var (
		run  runFlags
		out  outputFlags
		keep bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build every design in the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := out.validate(); err != nil {
				return err
			}

			opts, err := c.options(cmd, &run)
			if err != nil {
				return err
			}
			store, sess, err := openSession(ctx)
			if err != nil {
				return err
			}
			if sess.Len() == 0 {
				printInfo("Session is empty")
				printNextStep("Add designs", appName+" session add <design>")
				return nil
			}

			runner, err := c.newRunner(ctx, run.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			res, err := c.execute(ctx, runner, pipeline.InputsFromSession(sess), opts, &out)
			if err != nil || res.Empty() || keep {
				return err
			}
			sess.Reset()
			return store.Save(ctx, sess)
		},
	}

	run.register(cmd)
	out.register(cmd)
	cmd.Flags().BoolVar(&keep, "keep", false, "keep the session after building")
	return cmd
}
