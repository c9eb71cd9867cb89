package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stm/pkg/commands"
	"stm/pkg/store"
	"stm/pkg/ui"
)

func newAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task using quick-add notation",
		Long: `Add a task. The text may carry a due date, an estimate and tags:

  stm add "Math HW due tomorrow 17:00 ~90m #math"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := commands.HandleAddTask(app.Store, cmd.OutOrStdout(), strings.Join(args, " "), time.Now())
			return err
		},
	}
}

func newListCmd(app *App) *cobra.Command {
	var (
		done, all bool
		query     string
		priority  string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks grouped by overdue, today and upcoming",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePriority(priority)
			if err != nil {
				return err
			}
			mode := commands.ListOpen
			switch {
			case all:
				mode = commands.ListAll
			case done:
				mode = commands.ListDone
			}
			commands.HandleList(app.Store, cmd.OutOrStdout(), mode, store.Filter{Query: query, Priority: p}, time.Now())
			return nil
		},
	}
	cmd.Flags().BoolVar(&done, "done", false, "Show completed tasks only")
	cmd.Flags().BoolVar(&all, "all", false, "Show open and completed tasks")
	cmd.Flags().StringVarP(&query, "filter", "f", "", "Only tasks whose title or tags contain this text")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Only tasks of this priority (high, medium, low)")
	cmd.MarkFlagsMutuallyExclusive("done", "all")
	return cmd
}

func newDoneCmd(app *App, done bool) *cobra.Command {
	use, short := "done <id>", "Mark a task done"
	if !done {
		use, short = "undone <id>", "Reopen a completed task"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.HandleDone(app.Store, cmd.OutOrStdout(), args[0], done)
		},
	}
}

func newRmCmd(app *App) *cobra.Command {
	var hard bool
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Move a task to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.HandleDelete(app.Store, cmd.OutOrStdout(), args[0], hard)
		},
	}
	cmd.Flags().BoolVar(&hard, "hard", false, "Delete permanently instead of trashing")
	return cmd
}

func newRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a task from the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.HandleRestore(app.Store, cmd.OutOrStdout(), args[0])
		},
	}
}

func newTrashCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "trash",
		Short: "List trashed tasks",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			commands.HandleTrash(app.Store, cmd.OutOrStdout())
		},
	}
}

func newPurgeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Drop trashed tasks older than the retention period",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			commands.HandlePurge(app.Store, cmd.OutOrStdout())
		},
	}
}

func newCoeffCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "coeff <value>",
		Short: "Set the procrastination coefficient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid coefficient %q", args[0])
			}
			commands.HandleCoeff(app.Store, cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func newStatsCmd(app *App) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show estimate accuracy over completed tasks",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			commands.HandleStats(app.Store, cmd.OutOrStdout(), apply)
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "Store the suggested coefficient")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var exportType string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export active tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.HandleExportCommand(app.Store, cmd.OutOrStdout(), args[0], exportType)
		},
	}
	cmd.Flags().StringVarP(&exportType, "type", "t", commands.ExportJSON, "Export format (json, yaml, txt)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks from a txt export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.HandleImportCommand(app.Store, cmd.OutOrStdout(), args[0])
		},
	}
}

func newFocusCmd(app *App) *cobra.Command {
	var minutes int
	cmd := &cobra.Command{
		Use:   "focus <id>",
		Short: "Open the interface with a focus timer running on a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, ok := app.Store.Resolve(args[0])
			if !ok || task.Trashed() {
				return fmt.Errorf("%w: %q", commands.ErrTaskNotFound, args[0])
			}
			return runUI(app, ui.WithFocus(task.ID, minutes))
		},
	}
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "Time budget in minutes (defaults to the configured total)")
	return cmd
}

// parsePriority accepts a priority name or its number; empty means any
func parsePriority(s string) (store.Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, nil
	case "high", "3":
		return store.PriorityHigh, nil
	case "medium", "med", "2":
		return store.PriorityMedium, nil
	case "low", "1":
		return store.PriorityLow, nil
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}
