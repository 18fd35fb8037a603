package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"switchseed/db"
	"switchseed/seed"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultDBPath     = "switches.db"
	defaultMaxBackups = 5
)

type options struct {
	dbPath     string
	configPath string
	doBackup   bool
	maxBackups int
	verbose    bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}
	// config file only; environment lookups go through env
	v := viper.New()
	env := newEnv()

	rootCmd := &cobra.Command{
		Use:           "seed_switches",
		Short:         "Create feature switches for local testing",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := readConfig(v, opts.configPath); err != nil {
				return err
			}
			defaults, err := seed.LoadDefaults(v)
			if err != nil {
				return err
			}

			if opts.doBackup {
				if err := backupDB(logger, opts.dbPath, opts.maxBackups); err != nil {
					return err
				}
			}

			conn, err := db.BootstrapSQLite(opts.dbPath)
			if err != nil {
				return fmt.Errorf("bootstrap failed: %w", err)
			}
			seeder := &seed.Seeder{
				Store: db.NewSQLStore(conn),
				Lookup: func(key string) (string, bool) {
					if !env.IsSet(key) {
						return "", false
					}
					return env.GetString(key), true
				},
				Out:    cmd.OutOrStdout(),
				Logger: logger,
			}
			results, err := seeder.Seed(cmd.Context(), defaults)
			if err != nil {
				return fmt.Errorf("seeding stopped after %d switches: %w", len(results), err)
			}
			logger.Infow("seeding completed", "db", opts.dbPath, "switches", len(results))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", defaultDBPath, "Path to SQLite database file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&opts.configPath, "config", "", "Optional YAML file with a 'switches' list replacing the built-in table")
	rootCmd.Flags().BoolVar(&opts.doBackup, "backup", true, "Whether to create a backup of the database if it exists")
	rootCmd.Flags().IntVar(&opts.maxBackups, "max-backups", defaultMaxBackups, "Maximum number of backups to retain")

	rootCmd.AddCommand(newListCmd(opts))
	rootCmd.SetOut(out)
	return rootCmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every stored feature switch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.BootstrapSQLite(opts.dbPath)
			if err != nil {
				return fmt.Errorf("bootstrap failed: %w", err)
			}
			switches, err := db.NewSQLStore(conn).ListSwitches(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing switches: %w", err)
			}
			for _, sw := range switches {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%t\n", sw.Name, sw.Active)
			}
			return nil
		},
	}
}

// newEnv returns a viper that sees only the environment variables named in
// seed.EnvOverrides. An empty value counts as set.
func newEnv() *viper.Viper {
	env := viper.New()
	env.AllowEmptyEnv(true)
	for _, name := range seed.EnvOverrides {
		_ = env.BindEnv(name)
	}
	return env
}

func readConfig(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	return nil
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		logger, err = cfg.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Sugar(), nil
}
