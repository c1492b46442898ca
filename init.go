package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/pycounts/internal/config"
)

const (
	sentinelStart = "# pycounts:start"
	sentinelEnd   = "# pycounts:end"
)

var (
	sectionHeader = regexp.MustCompile(`(?m)^[ \t]*\[([^\]\r\n]+)\][ \t]*\r?$`)
	thresholdKey  = regexp.MustCompile(`(?m)^[ \t]*(` +
		regexp.QuoteMeta(config.KeyMaxModuleMembers) + `|` + regexp.QuoteMeta(config.KeyMaxMethods) +
		`)[ \t]*[=:]`)
)

// newInitCmd builds the `pycounts init` subcommand, which writes (or updates)
// a threshold section in a setup.cfg file.
func newInitCmd(s *settings, stdout, stderr io.Writer) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [flags] [path-to-setup.cfg]",
		Short: "Write the resolved thresholds to a setup.cfg file",
		Long: `Write a [flake8] section holding the resolved thresholds to a setup.cfg file.
The section is wrapped in sentinel comments so it can be updated in place on
subsequent runs without touching surrounding content. Creates the file if it
does not exist.

path-to-setup.cfg defaults to ./setup.cfg. When the file already has a
[flake8] section, the thresholds are written inside it; init refuses to run if
that section already sets either threshold outside the sentinels.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := s.options()
			if err != nil {
				return err
			}
			section := generateSection(opts)

			// --dry-run with no path: just print the section itself.
			if dryRun && len(args) == 0 {
				_, _ = fmt.Fprintln(stdout, section)
				return nil
			}

			path := defaultConfigFile
			if len(args) > 0 {
				path = args[0]
			}

			existing, err := os.ReadFile(path)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			updated, err := updateConfig(string(existing), opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			if dryRun {
				_, _ = fmt.Fprint(stdout, updated)
				return nil
			}

			if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			_, _ = fmt.Fprintf(stderr, "wrote pycounts section to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

// generateSection returns the sentinel-wrapped [flake8] block for o.
func generateSection(o config.Options) string {
	return sentinelStart + "\n[" + config.Section + "]\n" + thresholdLines(o) + "\n" + sentinelEnd
}

// generateKeys returns the sentinel-wrapped threshold keys for o, without a
// section header, for insertion into an existing [flake8] section.
func generateKeys(o config.Options) string {
	return sentinelStart + "\n" + thresholdLines(o) + "\n" + sentinelEnd
}

func thresholdLines(o config.Options) string {
	return fmt.Sprintf("%s = %d\n%s = %d",
		config.KeyMaxModuleMembers, o.MaxModuleMembers,
		config.KeyMaxMethods, o.MaxMethods,
	)
}

// updateConfig writes the thresholds for o into setup.cfg content. A
// [flake8] section outside the sentinels gets the keys inserted right after
// its header, so the file never holds two [flake8] sections. Otherwise the
// whole section is placed with applySection.
func updateConfig(content string, o config.Options) (string, error) {
	rest := removeSection(content)

	header, body, ok := findSection(rest, config.Section)
	if !ok {
		return applySection(content, generateSection(o)), nil
	}
	if m := thresholdKey.FindStringSubmatch(body); m != nil {
		return "", fmt.Errorf("[%s] already sets %s outside the %s block", config.Section, m[1], sentinelStart)
	}
	return rest[:header] + "\n" + generateKeys(o) + rest[header:], nil
}

// removeSection drops the sentinel block and the line break that follows it.
func removeSection(content string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)
	if start < 0 || end < start {
		return content
	}
	end += len(sentinelEnd)
	if strings.HasPrefix(content[end:], "\r\n") {
		end += 2
	} else if strings.HasPrefix(content[end:], "\n") {
		end++
	}
	return content[:start] + content[end:]
}

// findSection locates the ini section called name. header is the offset of
// the end of its header line, and body is the content up to the next section.
func findSection(content, name string) (header int, body string, ok bool) {
	headers := sectionHeader.FindAllStringSubmatchIndex(content, -1)
	for i, h := range headers {
		if strings.TrimSpace(content[h[2]:h[3]]) != name {
			continue
		}
		header = h[1]
		end := len(content)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		return header, content[header:end], true
	}
	return 0, "", false
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
