package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"redline/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "redline",
	Short: "Render compiler-style diagnostics as annotated source snippets",
	Long:  `Redline reads diagnostic snapshots and renders them as annotated source-code text: headers, bordered snippets with line numbers, and underlines connecting each message to the exact range it describes`,
}

// main initializes the CLI by setting the command version, registering
// subcommands and persistent flags, and then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress output, report via exit code only")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
