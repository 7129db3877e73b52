package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"redline/internal/diag"
	"redline/internal/diagfmt"
	"redline/internal/source"
	"redline/internal/version"
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] <snapshot.mp|snapshot.json>",
	Short: "Render a diagnostic snapshot as annotated source text",
	Long:  `Render reads a snapshot of diagnostics (msgpack or JSON), loads the source files it references, and renders annotated snippets in the chosen output format`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().String("format", "pretty", "output format (pretty|short|compact|json|sarif)")
	renderCmd.Flags().String("config", "", "path to a TOML render config (glyphs, styles)")
	renderCmd.Flags().Bool("ascii", false, "use seven-bit-safe border glyphs")
	renderCmd.Flags().Bool("with-notes", false, "include notes and secondary labels in machine output")
	renderCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	renderCmd.Flags().Int("jobs", 0, "max parallel workers for source loading (0=auto)")
}

// runRender executes the "render" command: it loads the snapshot and its
// source files, formats the diagnostics in the chosen output format, and
// exits with a non-zero status when any diagnostics contain errors.
func runRender(cmd *cobra.Command, args []string) error {
	snapshotPath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	ascii, err := cmd.Flags().GetBool("ascii")
	if err != nil {
		return fmt.Errorf("failed to get ascii flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	cfg := diagfmt.DefaultConfig()
	if configPath != "" {
		cfg, err = diagfmt.LoadConfig(configPath)
		if err != nil {
			return err
		}
	}
	if ascii {
		cfg.Chars = diagfmt.ASCIIChars()
	}

	snap, err := diag.LoadSnapshot(snapshotPath)
	if err != nil {
		return err
	}

	baseDir := filepath.Dir(snapshotPath)
	fs, err := loadSnapshotSources(snap, baseDir, jobs)
	if err != nil {
		return err
	}

	diags, err := snap.Diags()
	if err != nil {
		return err
	}
	bag := diag.NewBag(len(diags))
	for _, d := range diags {
		bag.Add(d)
	}
	bag.Sort()

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	opts := diagfmt.PrettyOpts{
		Color:    useColor(colorMode),
		PathMode: pathMode,
		Max:      maxDiagnostics,
	}

	// Тихий режим: только код возврата
	if quiet {
		if bag.HasErrors() {
			os.Exit(1)
		}
		return nil
	}

	switch format {
	case "pretty":
		err = diagfmt.Pretty(os.Stdout, bag, fs, cfg, opts)
	case "short":
		err = diagfmt.Short(os.Stdout, bag, fs, cfg, opts)
	case "compact":
		var out string
		out, err = diag.FormatCompact(bag.Items(), fs, withNotes)
		if err == nil && out != "" {
			fmt.Println(out)
		}
	case "json":
		err = diagfmt.JSON(os.Stdout, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			Max:              maxDiagnostics,
			IncludeNotes:     withNotes,
		})
	case "sarif":
		err = diagfmt.Sarif(os.Stdout, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "redline",
			ToolVersion:    version.Number,
			InvocationArgs: os.Args,
		})
	default:
		return fmt.Errorf("unknown format %q (must be pretty, short, compact, json, or sarif)", format)
	}
	if err != nil {
		return err
	}

	if bag.HasErrors() {
		os.Exit(1)
	}
	return nil
}

// loadSnapshotSources reads every file the snapshot references, in parallel,
// and registers them into a fresh FileSet in snapshot order so that file
// indices line up with FileIDs.
func loadSnapshotSources(snap *diag.Snapshot, baseDir string, jobs int) (*source.FileSet, error) {
	type loaded struct {
		content []byte
		flags   source.FileFlags
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	files := make([]loaded, len(snap.Files))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, path := range snap.Files {
		g.Go(func() error {
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			// #nosec G304 -- paths come from the snapshot the user passed in
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("load source %s: %w", path, err)
			}
			content, flags := source.Normalize(content)
			files[i] = loaded{content: content, flags: flags}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fs := source.NewFileSetWithBase(baseDir)
	for i, path := range snap.Files {
		fs.Add(path, files[i].content, files[i].flags)
	}
	return fs, nil
}

func useColor(mode string) bool {
	switch mode {
	case "on", "always":
		return true
	case "off", "never":
		return false
	}
	return isTerminal(os.Stdout)
}
