package cli

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stm/pkg/config"
	"stm/pkg/database"
	"stm/pkg/store"
	"stm/pkg/ui"
	"stm/pkg/utils"
)

// Opener returns the persister the task store loads from and saves to,
// plus whatever must be closed when the command is done.
type Opener func(cfg config.Config) (store.Persister, io.Closer, error)

// OpenDatabase connects to the configured SQL database and stores the
// snapshot under the configured key
func OpenDatabase(cfg config.Config) (store.Persister, io.Closer, error) {
	db, err := database.ConnectDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := database.EnsureSchema(db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return database.NewKV(db, cfg.StorageKey), db, nil
}

// App holds what every command needs once the root command has bootstrapped
type App struct {
	Config config.Config
	Styles config.Styles
	Store  *store.Store

	closer io.Closer
}

// close releases storage and flushes the logger. It is safe to call more than once.
func (a *App) close() {
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			utils.L().Warn("closing storage", zap.Error(err))
		}
		a.closer = nil
	}
	utils.CloseLogger()
}

// newRootCommand builds the stm command tree and the App its commands
// share. Running it without a subcommand opens the interactive interface.
func newRootCommand(open Opener) (*cobra.Command, *App) {
	var (
		configPath string
		verbose    bool
	)
	app := &App{}

	rootCmd := &cobra.Command{
		Use:   "stm",
		Short: "Student time manager",
		Long: `stm keeps a list of tasks with due dates, estimates and tags,
and runs focus sessions that credit the time spent back to each task.

Run without arguments to open the interactive interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, styles, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := utils.InitLogger(verbose); err != nil {
				return err
			}
			persister, closer, err := open(cfg)
			if err != nil {
				return fmt.Errorf("opening storage: %w", err)
			}
			app.Config = cfg
			app.Styles = styles
			app.closer = closer
			app.Store = store.New(persister, store.WithLogger(utils.L()))
			if err := app.Store.LoadError(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not read saved tasks (%v); changes will not be saved\n", err)
			}
			utils.L().Debug("storage ready",
				zap.String("driver", cfg.Database.Driver),
				zap.String("key", cfg.StorageKey))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(app)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newAddCmd(app),
		newListCmd(app),
		newDoneCmd(app, true),
		newDoneCmd(app, false),
		newRmCmd(app),
		newRestoreCmd(app),
		newTrashCmd(app),
		newPurgeCmd(app),
		newCoeffCmd(app),
		newStatsCmd(app),
		newExportCmd(app),
		newImportCmd(app),
		newFocusCmd(app),
	)
	return rootCmd, app
}

// execute runs root and then closes the app, whether or not the command failed
func execute(root *cobra.Command, app *App) error {
	defer app.close()
	return root.Execute()
}

// Execute runs the command tree against the configured database
func Execute() error {
	if err := execute(newRootCommand(OpenDatabase)); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func runUI(app *App, opts ...ui.Option) error {
	model := ui.NewModel(app.Store, app.Config, app.Styles, opts...)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running interface: %w", err)
	}
	return nil
}
