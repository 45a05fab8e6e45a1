package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/folio/internal/core/document"
	"github.com/colonyops/folio/internal/store/jsonfile"
	"github.com/colonyops/folio/pkg/iojson"
)

type StateCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
}

// NewStateCmd creates a new state command
func NewStateCmd(flags *Flags) *StateCmd {
	return &StateCmd{flags: flags}
}

// Register adds the state command and its subcommands to the application
func (cmd *StateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "state",
		Usage: "Inspect and manage persisted document state",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List saved document states",
				UsageText: "folio state ls [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "show",
				Usage:     "Show the saved state for one document",
				UsageText: "folio state show <document-id>",
				Action:    cmd.runShow,
			},
			{
				Name:      "prune",
				Usage:     "Delete all saved document states",
				UsageText: "folio state prune",
				Action:    cmd.runPrune,
			},
		},
	})

	return app
}

func (cmd *StateCmd) store() (*jsonfile.StateStore, error) {
	return jsonfile.New(cmd.flags.StateDir)
}

type stateRow struct {
	ID       string  `json:"id"`
	Page     int     `json:"page"`
	Scale    float64 `json:"scale"`
	DarkMode bool    `json:"dark_mode"`
	Marks    int     `json:"marks"`
}

func (cmd *StateCmd) runLs(ctx context.Context, c *cli.Command) error {
	store, err := cmd.store()
	if err != nil {
		return err
	}

	entries, err := store.List()
	if err != nil {
		return fmt.Errorf("list states: %w", err)
	}

	if len(entries) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No saved document states\n")
		}
		return nil
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, entry := range entries {
			row := stateRow{
				ID:       entry.ID.String(),
				Page:     entry.State.CurrentPage,
				Scale:    entry.State.Scale,
				DarkMode: entry.State.DarkMode,
				Marks:    len(entry.State.Marks) + len(entry.State.NamedMarks),
			}
			if err := iojson.WriteLine(out, row); err != nil {
				return fmt.Errorf("encode state: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPAGE\tSCALE\tDARK\tMARKS")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%t\t%d\n",
			entry.ID,
			entry.State.CurrentPage,
			entry.State.Scale,
			entry.State.DarkMode,
			len(entry.State.Marks)+len(entry.State.NamedMarks),
		)
	}
	return w.Flush()
}

func (cmd *StateCmd) runShow(ctx context.Context, c *cli.Command) error {
	arg := c.Args().First()
	if arg == "" {
		return fmt.Errorf("document id is required")
	}

	id, err := document.ParseID(arg)
	if err != nil {
		return fmt.Errorf("invalid document id %q: %w", arg, err)
	}

	store, err := cmd.store()
	if err != nil {
		return err
	}

	state, err := store.Get(id)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if state == nil {
		return fmt.Errorf("no saved state for %s", id)
	}

	return iojson.WriteWith(c.Root().Writer, os.Stderr, state)
}

func (cmd *StateCmd) runPrune(ctx context.Context, c *cli.Command) error {
	store, err := cmd.store()
	if err != nil {
		return err
	}

	removed, err := store.Prune()
	if err != nil {
		return fmt.Errorf("prune states: %w", err)
	}

	fmt.Fprintf(c.Root().Writer, "Pruned %d state file(s)\n", removed)
	return nil
}
