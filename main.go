// pycounts reports Python modules and classes with too many members.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phobologic/pycounts/internal/check"
	"github.com/phobologic/pycounts/internal/config"
	"github.com/phobologic/pycounts/internal/counts"
	"github.com/phobologic/pycounts/internal/discover"
	"github.com/phobologic/pycounts/internal/report"
)

var version = "dev"

const defaultMaxFileSize = 1_000_000 // 1 MB

// defaultConfigFile is read from the working directory when --config is not given.
const defaultConfigFile = "setup.cfg"

// errViolations is returned by run when at least one violation was reported.
var errViolations = errors.New("violations found")

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errViolations):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.Execute()
}

// settings holds the flags shared by every command.
type settings struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
}

func (s *settings) logger(stderr io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if s.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// options resolves the threshold snapshot from flags, environment and the
// config file, in that order of precedence.
func (s *settings) options() (config.Options, error) {
	s.v.SetEnvPrefix(config.EnvPrefix)
	s.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	s.v.AutomaticEnv()

	path := s.cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		s.v.SetConfigFile(path)
		switch filepath.Ext(path) {
		case ".cfg", ".ini":
			s.v.SetConfigType("ini")
		}
		if err := s.v.ReadInConfig(); err != nil {
			return config.Options{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	return config.Load(s.v)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	s := &settings{v: viper.New()}

	var (
		checks      string
		format      string
		maxFileSize int
		listChecks  bool
		showVersion bool
	)

	cmd := &cobra.Command{
		Use:   "pycounts [flags] [paths...]",
		Short: "Report Python modules and classes with too many members",
		Long: `pycounts counts the classes and functions defined directly in every Python
module, and the methods defined directly in every class, and reports each
module or class whose count exceeds its configured maximum.

Overload signatures (@overload, @typing.overload) that precede the
implementation of the same name are not counted. Definitions nested in
functions, conditionals or loops do not count against any scope.

Paths default to the current directory. Directories are searched for .py and
.pyi files, honouring .gitignore.

Thresholds are read from flags, then PYCOUNTS_* environment variables, then
the config file (default ./setup.cfg, [flake8] section).

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, config or paths)`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				_, _ = fmt.Fprintf(stdout, "pycounts %s\n", version)
				return nil
			}

			if listChecks {
				for _, c := range counts.Checks() {
					_, _ = fmt.Fprintf(stdout, "%-16s %s %-30s %s\n", c.Name, c.Kind.Code, c.Kind.Name, c.Doc)
				}
				return nil
			}

			selected, err := selectChecks(checks)
			if err != nil {
				return err
			}

			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			opts, err := s.options()
			if err != nil {
				return err
			}

			log := s.logger(stderr)
			log.Debug("resolved options", "options", opts)

			paths := args
			if len(paths) == 0 {
				paths = []string{"."}
			}

			files, err := discover.Collect(paths)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no Python files found")
			}

			c := &check.Checker{
				Options:     opts,
				Checks:      selected,
				MaxFileSize: int64(maxFileSize),
				Logger:      log,
			}
			results, err := c.CheckFiles(cmd.Context(), "", files)
			if err != nil {
				return err
			}

			if err := report.Write(stdout, f, rootName(paths), results); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			if report.Count(results) > 0 {
				return errViolations
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetContext(context.Background())

	pf := cmd.PersistentFlags()
	pf.StringVar(&s.cfgFile, "config", "", "config file (default is ./"+defaultConfigFile+" when present)")
	pf.Int(config.KeyMaxModuleMembers, config.DefaultMaxModuleMembers, "maximum classes and functions per module")
	pf.Int(config.KeyMaxMethods, config.DefaultMaxMethods, "maximum methods per class")
	pf.BoolVar(&s.verbose, "verbose", false, "log skipped and checked files")
	_ = s.v.BindPFlag(config.KeyMaxModuleMembers, pf.Lookup(config.KeyMaxModuleMembers))
	_ = s.v.BindPFlag(config.KeyMaxMethods, pf.Lookup(config.KeyMaxMethods))

	flags := cmd.Flags()
	flags.StringVar(&checks, "checks", "", "comma-separated list of checks to run (default: all)")
	flags.BoolVar(&listChecks, "list", false, "list available checks and exit")
	flags.StringVarP(&format, "format", "f", string(report.Text), "output format: text, json or toon")
	flags.IntVar(&maxFileSize, "max-file-size", defaultMaxFileSize, "skip files larger than this many bytes")
	flags.BoolVarP(&showVersion, "version", "V", false, "show version and exit")

	cmd.AddCommand(newInitCmd(s, stdout, stderr))
	return cmd
}

// selectChecks resolves a comma-separated list of check names.
// An empty list selects every check.
func selectChecks(list string) ([]counts.Check, error) {
	all := counts.Checks()
	if strings.TrimSpace(list) == "" {
		return all, nil
	}

	byName := make(map[string]counts.Check, len(all))
	for _, c := range all {
		byName[c.Name] = c
	}

	var selected []counts.Check
	seen := make(map[string]bool)
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		c, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown check %q", name)
		}
		selected = append(selected, c)
		seen[name] = true
	}
	return selected, nil
}

func rootName(paths []string) string {
	if len(paths) != 1 {
		return "."
	}
	abs, err := filepath.Abs(paths[0])
	if err != nil {
		return paths[0]
	}
	return filepath.Base(abs)
}
