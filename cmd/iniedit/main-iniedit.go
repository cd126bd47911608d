// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/outrigdev/iniedit/pkg/boot"
	"github.com/outrigdev/iniedit/pkg/docsearch"
	"github.com/outrigdev/iniedit/pkg/filesearch"
	"github.com/outrigdev/iniedit/pkg/gensearch"
	"github.com/outrigdev/iniedit/pkg/linemodel"
	"github.com/outrigdev/iniedit/pkg/logutil"
	"github.com/outrigdev/iniedit/pkg/serverbase"
	"github.com/outrigdev/iniedit/pkg/settings"
	"github.com/spf13/cobra"
)

// IniEditVersion is the current version of iniedit
var IniEditVersion = "v0.0.0"

// IniEditBuildTime is the build timestamp of iniedit
var IniEditBuildTime = ""

// exitError carries a specific exit code out of a command
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

type cliOpts struct {
	logLevel  string
	logFormat string
	dev       bool
	noColor   bool
}

func (o *cliOpts) useColor(w io.Writer) bool {
	if o.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func openStore() *settings.Store {
	store := settings.NewStore(serverbase.GetSettingsPath())
	store.Load()
	return store
}

// resolveDir picks the folder to work on: the argument (remembered as the
// last folder) or the remembered folder
func resolveDir(store *settings.Store, args []string) (string, error) {
	if len(args) > 0 {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return "", err
		}
		if err := store.SetLastFolder(dir); err != nil {
			logutil.Component("cli").WithError(err).Warn("cannot remember folder")
		}
		return dir, nil
	}
	dir, err := store.ClearMissingFolder()
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", fmt.Errorf("no folder given and no last folder remembered")
	}
	return dir, nil
}

func resolveSyntax(store *settings.Store, name string) (gensearch.Syntax, error) {
	if name == "" {
		name = string(store.Get().QuerySyntax)
	}
	return gensearch.ParseSyntax(name)
}

func runLs(w io.Writer, store *settings.Store, args []string) error {
	dir, err := resolveDir(store, args)
	if err != nil {
		return err
	}
	paths, err := filesearch.ListCandidateFiles(dir, filesearch.DefaultExt)
	if err != nil {
		return err
	}
	for _, path := range paths {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		fmt.Fprintln(w, filepath.ToSlash(rel))
	}
	return nil
}

func runGrep(ctx context.Context, w io.Writer, store *settings.Store, query string, args []string, syntaxName string, workers int) error {
	dir, err := resolveDir(store, args)
	if err != nil {
		return err
	}
	syntax, err := resolveSyntax(store, syntaxName)
	if err != nil {
		return err
	}
	paths, err := filesearch.ListCandidateFiles(dir, filesearch.DefaultExt)
	if err != nil {
		return err
	}
	f := &filesearch.Filter{Workers: workers, Syntax: syntax}
	matched, err := f.Run(ctx, paths, query)
	if err != nil {
		return err
	}
	for _, path := range matched {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		fmt.Fprintln(w, filepath.ToSlash(rel))
	}
	if len(matched) == 0 {
		return &exitError{code: 1, msg: fmt.Sprintf("no files match %q", query)}
	}
	return nil
}

func runGet(w io.Writer, path string, key string) error {
	doc, err := linemodel.Load(path)
	if err != nil {
		return err
	}
	val, ok := doc.GetValue(key)
	if !ok {
		return &exitError{code: 1, msg: fmt.Sprintf("key %q not found in %s", key, path)}
	}
	fmt.Fprintln(w, val)
	return nil
}

// parseAssignments splits "key=value" arguments on the first "=". Values
// spanning lines are rejected.
func parseAssignments(args []string) ([]string, map[string]string, error) {
	var keys []string
	values := make(map[string]string)
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, nil, fmt.Errorf("invalid assignment %q (want key=value)", arg)
		}
		if err := linemodel.ValidateValue(strings.TrimSpace(val)); err != nil {
			return nil, nil, fmt.Errorf("invalid assignment for %q: %w", key, err)
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = strings.TrimSpace(val)
	}
	return keys, values, nil
}

func runSet(w io.Writer, path string, args []string, strict bool) error {
	keys, values, err := parseAssignments(args)
	if err != nil {
		return err
	}
	doc, err := linemodel.Load(path)
	if err != nil {
		return err
	}
	var unknown []string
	changed := 0
	for _, key := range keys {
		cur, ok := doc.GetValue(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		if cur != values[key] {
			doc.UpdateValue(key, values[key])
			changed++
		}
	}
	if len(unknown) > 0 {
		if strict {
			return fmt.Errorf("unknown keys in %s: %s", path, strings.Join(unknown, ", "))
		}
		fmt.Fprintf(w, "skipped unknown keys: %s\n", strings.Join(unknown, ", "))
	}
	if changed == 0 {
		fmt.Fprintln(w, "no changes")
		return nil
	}
	if err := doc.Save(""); err != nil {
		return err
	}
	fmt.Fprintf(w, "updated %d value(s) in %s\n", changed, path)
	return nil
}

func runShow(w io.Writer, path string, pal palette) error {
	doc, err := linemodel.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, pal.section(filepath.Base(path)))
	renderDocument(w, doc, docsearch.HighlightDocument(doc, ""), pal)
	return nil
}

func runHighlight(w io.Writer, store *settings.Store, path string, query string, syntaxName string, explain bool, pal palette) error {
	syntax, err := resolveSyntax(store, syntaxName)
	if err != nil {
		return err
	}
	searcher, err := gensearch.GetSearcher(query, syntax)
	if err != nil {
		return err
	}
	if explain {
		fmt.Fprintln(w, pal.dim(gensearch.PrettyPrintMultiline(searcher)))
	}
	doc, err := linemodel.Load(path)
	if err != nil {
		return err
	}
	renderMatches(w, docsearch.HighlightWithSyntax(doc, query, syntax), pal)
	return nil
}

func runExport(w io.Writer, path string, format string) error {
	doc, err := linemodel.Load(path)
	if err != nil {
		return err
	}
	return exportDocument(w, doc, format)
}

func versionString() string {
	if IniEditBuildTime != "" {
		return fmt.Sprintf("%s+%s", IniEditVersion, IniEditBuildTime)
	}
	return fmt.Sprintf("%s+dev", IniEditVersion)
}

func makeRootCmd(opts *cliOpts) *cobra.Command {
	// Create the root command
	rootCmd := &cobra.Command{
		Use:   "iniedit",
		Short: "iniedit browses, searches and edits INI-style config files",
		Long: `iniedit browses, searches and edits INI-style config files.
Comments, blank lines and unrecognized lines are preserved byte for byte, only
edited key = value lines change.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.dev {
				os.Setenv(serverbase.IniEditDevEnvName, "1")
			}
			logutil.InitLogger(opts.logLevel, opts.logFormat, cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", logutil.FormatText, "log format (text or json)")
	rootCmd.PersistentFlags().BoolVar(&opts.dev, "dev", false, "Run in development mode")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	lsCmd := &cobra.Command{
		Use:   "ls [dir]",
		Short: "List the .ini files under a folder",
		Long:  `List the .ini files under a folder, recursively and sorted. Without a folder the last used folder is listed.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(cmd.OutOrStdout(), openStore(), args)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Render a config file as the editor shows it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			return runShow(w, args[0], makePalette(w, opts.useColor(w)))
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <file> <key>",
		Short: "Print the value of a key",
		Long:  `Print the value of a key. The first definition of a key wins. Exits with status 1 when the key is absent.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd.OutOrStdout(), args[0], args[1])
		},
	}

	setCmd := &cobra.Command{
		Use:   "set <file> <key>=<value>...",
		Short: "Update values and save the file",
		Long:  `Update one or more values and save the file. Unknown keys are reported and skipped, or fail the command with --strict.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			strict, _ := cmd.Flags().GetBool("strict")
			return runSet(cmd.OutOrStdout(), args[0], args[1:], strict)
		},
	}
	setCmd.Flags().Bool("strict", false, "Fail when a key does not exist")

	grepCmd := &cobra.Command{
		Use:   "grep <query> [dir]",
		Short: "List the .ini files whose content matches a query",
		Long: `List the .ini files whose content matches a query, case-insensitively.
With --syntax query the query supports "quoted" and 'case sensitive' terms,
/regexps/, ~fuzzy terms, -negation, a | b alternatives and $path: or $content: fields.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			syntax, _ := cmd.Flags().GetString("syntax")
			workers, _ := cmd.Flags().GetInt("workers")
			return runGrep(cmd.Context(), cmd.OutOrStdout(), openStore(), args[0], args[1:], syntax, workers)
		},
	}
	grepCmd.Flags().String("syntax", "", "query syntax: plain or query (default from settings, else plain)")
	grepCmd.Flags().Int("workers", 0, "number of parallel readers (default GOMAXPROCS)")

	highlightCmd := &cobra.Command{
		Use:   "highlight <file> <query>",
		Short: "Show which keys, values and comments of a file match a query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			syntax, _ := cmd.Flags().GetString("syntax")
			explain, _ := cmd.Flags().GetBool("explain")
			w := cmd.OutOrStdout()
			return runHighlight(w, openStore(), args[0], args[1], syntax, explain, makePalette(w, opts.useColor(w)))
		},
	}
	highlightCmd.Flags().String("syntax", "", "query syntax: plain or query (default from settings, else plain)")
	highlightCmd.Flags().Bool("explain", false, "Print the compiled query before the matches")

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Print the entries of a file as JSON or TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return runExport(cmd.OutOrStdout(), args[0], format)
		},
	}
	exportCmd.Flags().String("format", ExportFormatJson, "output format: json or toml")

	serveCmd := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Run the iniedit web server",
		Long:  `Run the iniedit web server, which exposes the file list, live search and editing over HTTP and websocket.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listen, _ := cmd.Flags().GetString("listen")
			serverOpts := boot.ServerOpts{ListenAddr: listen}
			if len(args) > 0 {
				serverOpts.Root = args[0]
			}
			if !cmd.Flags().Changed("log-level") {
				logutil.InitLogger("info", opts.logFormat, cmd.ErrOrStderr())
			}
			return boot.RunServer(cmd.Context(), serverOpts)
		},
	}
	serveCmd.Flags().String("listen", "", "listen address (default 127.0.0.1:5015, 6015 in dev mode)")

	// Create the version command
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of iniedit",
		Long:  `Print the version number of iniedit and exit.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}

	// Add commands to the root command
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(grepCmd)
	rootCmd.AddCommand(highlightCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	return rootCmd
}

func main() {
	// Set serverbase version from main version (which gets overridden by build tags)
	serverbase.IniEditVersion = IniEditVersion
	serverbase.IniEditBuildTime = IniEditBuildTime

	rootCmd := makeRootCmd(&cliOpts{})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			if exitErr.msg != "" {
				fmt.Fprintln(os.Stderr, exitErr.msg)
			}
			os.Exit(exitErr.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
