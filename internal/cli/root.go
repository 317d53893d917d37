// Package cli implements the moar command line tool.
package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/s4ke/moar/internal/catalog"
	"github.com/s4ke/moar/pkg/moar"
)

// EnvPrefix is the prefix of environment variables overriding flags, so
// MOAR_DB sets --db.
const EnvPrefix = "MOAR"

// RootOptions holds global flags and the resources shared by subcommands.
type RootOptions struct {
	Verbose      bool
	ConfigFile   string
	DB           string
	CacheMaxCost int64

	conf   *viper.Viper
	logger *Logger
	cache  *moar.Cache
	store  *catalog.Store
}

// DefaultDB is the catalog path used when neither --db nor MOAR_DB is set.
func DefaultDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "moar.db"
	}
	return filepath.Join(dir, "moar", "catalog.db")
}

// NewRootCommand creates the root command for the moar CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{conf: viper.New()}

	cmd := &cobra.Command{
		Use:   "moar",
		Short: "moar - memory occurrence automata regex engine",
		Long: `Match, search and rewrite text with memory occurrence automata.

Automata are read from JSON or YAML description files, or from the
catalog with an @name reference. Backreferences are supported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output on stderr")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (json, yaml or toml)")
	flags.StringVar(&opts.DB, "db", DefaultDB(), "catalog database path")
	flags.Int64Var(&opts.CacheMaxCost, "cache-max-cost", moar.DefaultCacheConfig().MaxCost,
		"bytes of automaton descriptions kept in the load cache")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewReplaceCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewGenCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))

	return cmd
}

// init resolves flags against the config file and MOAR_* environment, then
// builds the shared cache.
func (o *RootOptions) init(cmd *cobra.Command) error {
	conf := o.conf
	if err := bindFlags(conf, cmd.LocalFlags(), cmd.InheritedFlags()); err != nil {
		return WrapExitError(ExitCommandError, "binding flags", err)
	}
	conf.SetEnvPrefix(EnvPrefix)
	conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	conf.AutomaticEnv()

	if cfg := conf.GetString("config"); cfg != "" {
		conf.SetConfigFile(cfg)
		if err := conf.ReadInConfig(); err != nil {
			return WrapExitError(ExitCommandError, "reading config", errors.Wrap(err, cfg))
		}
	}

	o.Verbose = conf.GetBool("verbose")
	o.DB = conf.GetString("db")
	o.CacheMaxCost = conf.GetInt64("cache-max-cost")

	o.logger = NewLogger(o.Verbose)
	o.logger.SetOutput(cmd.ErrOrStderr())
	if f := conf.ConfigFileUsed(); f != "" {
		o.logger.Log("config: %s", f)
	}

	cacheCfg := moar.DefaultCacheConfig()
	cacheCfg.MaxCost = o.CacheMaxCost
	cache, err := moar.NewCache(cacheCfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "creating cache", err)
	}
	o.cache = cache
	return nil
}

// bindFlags makes every flag of the given sets readable through conf, so
// the config file and environment can supply any of them.
func bindFlags(conf *viper.Viper, sets ...*pflag.FlagSet) error {
	for _, fs := range sets {
		if err := conf.BindPFlags(fs); err != nil {
			return err
		}
	}
	return nil
}

func (o *RootOptions) close() {
	if o.cache != nil {
		hits, misses := o.cache.Stats()
		o.logger.Log("cache: %d hits, %d misses", hits, misses)
		o.cache.Close()
		o.cache = nil
	}
	if o.store != nil {
		if err := o.store.Close(); err != nil {
			glog.Warningf("closing catalog: %v", err)
		}
		o.store = nil
	}
	glog.Flush()
}

// catalog opens the catalog on first use.
func (o *RootOptions) catalog() (*catalog.Store, error) {
	if o.store != nil {
		return o.store, nil
	}
	if dir := filepath.Dir(o.DB); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, WrapExitError(ExitCommandError, "creating catalog directory", err)
		}
	}
	store, err := catalog.Open(o.DB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "opening catalog", err)
	}
	o.logger.Log("catalog: %s", o.DB)
	o.store = store
	return store, nil
}
