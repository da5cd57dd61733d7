package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lazypower/recognition/internal/config"
	"github.com/lazypower/recognition/internal/store"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	dbPath     string
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:           "recognition",
		Short:         "A living field of recognition moments",
		Long:          "Recognition keeps a small graph of moments and the resonance, tension and evolution between them, laid out by a force simulation and served to the browser.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ~/.recognition/config.toml)")
	cmd.PersistentFlags().StringVar(&g.dbPath, "db", "", "database path (overrides config and RECOGNITION_DB)")

	cmd.AddCommand(
		newVersionCmd(),
		newServeCmd(g),
		newGraphCmd(g),
		newShowCmd(g),
		newAddCmd(g),
		newResetCmd(g),
		newSimulateCmd(g),
		newExportCmd(g),
		newHistoryCmd(g),
	)
	return cmd
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		Bad.Fprintf(rootCmd.ErrOrStderr(), "error: %v\n", err)
		return err
	}
	return nil
}

// configFile is --config or ~/.recognition/config.toml.
func (g *globals) configFile() string {
	if g.configPath != "" {
		return g.configPath
	}
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(dbPath), "config.toml")
}

// loadConfig reads the config file and applies the --db override.
func (g *globals) loadConfig() (config.Config, error) {
	cfg, err := config.Load(g.configFile())
	if err != nil {
		return cfg, err
	}
	if g.dbPath != "" {
		cfg.Database.Path = g.dbPath
	}
	return cfg, nil
}

// openDB opens the configured database, falling back to the default path.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
