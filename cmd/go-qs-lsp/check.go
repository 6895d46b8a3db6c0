package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/server"
	"github.com/CWBudde/go-qs-lsp/internal/workspace"
)

// errCheckFailed makes the check command exit non-zero after reporting.
var errCheckFailed = errors.New("check failed")

var checkCmd = &cobra.Command{
	Use:   "check [dir...]",
	Short: "Load the snapshots below each directory and report their diagnostics",
	Long:  "Loads every snapshot selected by each directory's .qsls.toml and prints load failures and compiler diagnostics. Exits non-zero when a snapshot fails to load or an error is reported.",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	cfg := server.DefaultConfig()
	matchers := make([]*workspace.Matcher, 0, len(args))

	for _, dir := range args {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", dir, err)
		}

		if err := server.LoadConfigFile(abs, cfg); err != nil {
			return err
		}

		matchers = append(matchers, workspace.NewMatcher(abs, cfg.Snapshots.Include, cfg.Snapshots.Exclude))
	}

	res, err := workspace.NewLoader().LoadRoots(checkContext(cmd), matchers, cfg.Parallelism)
	if err != nil {
		return err
	}

	if report(cmd.OutOrStdout(), res, cfg.MaxProblems) {
		return errCheckFailed
	}

	return nil
}

// report prints load failures and diagnostics and tells whether any of
// them is fatal.
func report(w io.Writer, res *workspace.LoadResult, maxProblems int) bool {
	failed := len(res.Failed) > 0

	paths := make([]string, 0, len(res.Failed))
	for path := range res.Failed {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	for _, path := range paths {
		fmt.Fprintf(w, "%s: %v\n", path, res.Failed[path])
	}

	files := res.Compilation.Files()
	problems := 0

	for _, f := range files {
		diags := append([]compilation.Diagnostic(nil), f.Diagnostics...)
		sort.SliceStable(diags, func(i, j int) bool { return diags[i].Range.Start.Before(diags[j].Range.Start) })

		if maxProblems > 0 && len(diags) > maxProblems {
			diags = diags[:maxProblems]
		}

		for _, d := range diags {
			fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", f.URI, d.Range.Start.Line+1, d.Range.Start.Column+1, severityName(d.Severity), d.Message)

			if d.Severity == compilation.SeverityError {
				failed = true
			}

			problems++
		}
	}

	fmt.Fprintf(w, "%d files, %d problems, %d snapshots parsed, %d failed\n", len(files), problems, res.Parsed, len(res.Failed))

	return failed
}

func severityName(s compilation.Severity) string {
	switch s {
	case compilation.SeverityError:
		return "error"
	case compilation.SeverityWarning:
		return "warning"
	case compilation.SeverityInformation:
		return "info"
	default:
		return "hint"
	}
}

// checkContext is used when the command runs outside Execute.
func checkContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
