package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Command line flags.
type options struct {
	configPath string
	site       string
	debug      bool

	// Modes other than searching.
	serve     bool
	addr      string
	listSites bool
}

// Loads the configuration and puts a logger into the command's context.
func (o *options) setup(cmd *cobra.Command) (config, context.Context, error) {
	path := o.configPath
	explicit := path != ""
	if !explicit {
		// Try config.yaml
		path = "./config.yaml"
	}

	cfg, err := loadConfig(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return cfg, nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg = defaultConfig
	}

	log := newLogger(cmd.ErrOrStderr(), o.debug || cfg.Debug)
	return cfg, log.WithContext(cmd.Context()), nil
}

// Logs to w, which must not be stdout since feedback is written there.
func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "wikisearch [flags] <query>",
		Short: "Search a MediaWiki site and print Alfred script filter results",
		Long: `wikisearch searches Wikipedia, or any other MediaWiki site, and prints the
results as Alfred script filter JSON in the order the wiki ranked them.

With --serve, the same results are served at GET /search?q=<query> instead.
Without a configuration file only the built-in sites are available; see
--sites.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.serve || opts.listSites {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		Version:      version(),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, ctx, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			if opts.listSites {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				return enc.Encode(cfg.allSites())
			}

			s, err := newSearcher(ctx, cfg, opts.site)
			if err != nil {
				return err
			}

			if opts.serve {
				addr := opts.addr
				if addr == "" {
					addr = cfg.Addr
				}
				return serveHTTP(ctx, addr, s)
			}

			// Alfred passes the query as one argument, but typing
			// it in a shell shouldn't require quoting.
			return s.run(ctx, cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}

	flags := root.Flags()
	flags.StringVar(&opts.configPath, "conf", "", "configuration file; ./config.yaml will be used if it exists")
	flags.StringVar(&opts.site, "site", "", "site to search instead of the configured one")
	flags.BoolVar(&opts.debug, "debug", false, "log debugging information to stderr")
	flags.BoolVar(&opts.serve, "serve", false, "serve results over HTTP instead of searching once")
	flags.StringVar(&opts.addr, "addr", "", "address to listen on with --serve; defaults to the addr setting")
	flags.BoolVar(&opts.listSites, "sites", false, "print the sites that can be searched and exit")

	root.MarkFlagsMutuallyExclusive("serve", "sites")
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}
