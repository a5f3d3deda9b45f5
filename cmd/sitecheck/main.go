package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/sitecheck/internal/expect"
	"bennypowers.dev/sitecheck/internal/harness"
	"bennypowers.dev/sitecheck/internal/log"
	"bennypowers.dev/sitecheck/internal/version"
	"bennypowers.dev/sitecheck/site"
)

var errChecksFailed = errors.New("checks failed")

type options struct {
	Root     string
	Suite    string
	Format   string
	LogLevel string
	Verbose  bool
	Embedded bool
	Coverage []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			log.Error("%v", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "sitecheck [root]",
		Short:         "Verify responsive style rules and slider breakpoints in site sources",
		Args:          cobra.MaximumNArgs(1),
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				v.Set("root", args[0])
			}
			return run(cmd.OutOrStdout(), options{
				Root:     v.GetString("root"),
				Suite:    v.GetString("suite"),
				Format:   v.GetString("format"),
				LogLevel: v.GetString("log-level"),
				Verbose:  v.GetBool("verbose"),
				Embedded: v.GetBool("embedded"),
				Coverage: v.GetStringSlice("coverage"),
			})
		},
	}

	f := cmd.Flags()
	f.String("root", ".", "site root holding the artifacts and __tests__ suites")
	f.String("suite", expect.DefaultSuitePattern, "glob selecting suite files under the root")
	f.String("format", "text", "report format: text or json")
	f.String("log-level", "warn", "minimum log level: debug, info, warn or error")
	f.Bool("verbose", false, "enable debug logging, same as --log-level debug")
	f.Bool("embedded", false, "check the site compiled into the binary instead of root")
	f.StringSlice("coverage", expect.DefaultCoverage, "globs selecting sources every suite run should inspect; !glob excludes")

	// Env vars use the SITECHECK_ prefix: SITECHECK_ROOT, SITECHECK_FORMAT, ...
	_ = v.BindPFlags(f)
	v.SetEnvPrefix("SITECHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

func run(w io.Writer, opts options) error {
	level, err := log.ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}
	if opts.Verbose {
		level = log.LevelDebug
	}
	log.SetLevel(level)

	if opts.Format != "text" && opts.Format != "json" {
		return fmt.Errorf("unknown format %q: want text or json", opts.Format)
	}

	var fsys fs.FS = os.DirFS(opts.Root)
	if opts.Embedded {
		fsys = site.FS
	}

	paths, err := expect.Discover(fsys, opts.Suite)
	if err != nil {
		return err
	}

	suites := make([]*expect.Suite, 0, len(paths))
	for _, p := range paths {
		suite, err := expect.Load(fsys, p)
		if err != nil {
			return err
		}
		suites = append(suites, suite)
	}

	report := harness.Run(fsys, suites...)
	if err := report.CheckCoverage(fsys, opts.Coverage); err != nil {
		log.Warn("coverage skipped: %v", err)
	}

	if opts.Format == "json" {
		err = report.WriteJSON(w)
	} else {
		err = report.WriteText(w)
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%w: %d of %d", errChecksFailed, failed, len(report.Results))
	}
	return nil
}
