// Package cli implements the Cobra-based command-line interface for
// obsidian-export: one command that walks a vault (or a single note),
// expands wiki-links and embeds, and writes plain CommonMark to a
// destination tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/obsidian-tools/obsidian-export/internal/diag"
	"github.com/obsidian-tools/obsidian-export/internal/exporter"
	"github.com/obsidian-tools/obsidian-export/internal/frontmatter"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version information reported by --version.
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
	rootCmd.Version = v
	rootCmd.SetVersionTemplate(fmt.Sprintf("obsidian-export %s (commit: %s, built: %s)\n", version, commit, date))
}

var flags struct {
	frontmatterMode   string
	hidden            bool
	noGit             bool
	ignoreFile        string
	noRecursiveEmbeds bool
	hardLinebreaks    bool
	startAt           string
	skipTags          []string
	onlyTags          []string
	workers           int
	dryRun            bool
	verbose           bool
}

var rootCmd = &cobra.Command{
	Use:   "obsidian-export <source> <destination>",
	Short: "Export an Obsidian vault to plain CommonMark",
	Long: `obsidian-export walks an Obsidian vault (or a single note) and
writes an equivalent tree of plain CommonMark files: wiki-links become
ordinary Markdown links, embeds are transcluded or rendered as images,
and Obsidian-specific syntax not expressible in CommonMark degrades
gracefully instead of breaking the output.`,
	Version: version,
	Args:    cobra.ExactArgs(2),
	RunE:    runExport,
}

func init() {
	rootCmd.Flags().StringVar(&flags.frontmatterMode, "frontmatter", "ifpresent", "frontmatter emission mode: never, always, ifpresent")
	rootCmd.Flags().BoolVar(&flags.hidden, "hidden", false, "include dotfiles and dot-directories")
	rootCmd.Flags().BoolVar(&flags.noGit, "no-git", false, "do not honour .gitignore")
	rootCmd.Flags().StringVar(&flags.ignoreFile, "ignore-file", ".export-ignore", "name of the vault-local ignore file")
	rootCmd.Flags().BoolVar(&flags.noRecursiveEmbeds, "no-recursive-embeds", false, "break cyclic embeds with a link instead of erroring")
	rootCmd.Flags().BoolVar(&flags.hardLinebreaks, "hard-linebreaks", false, "convert soft line breaks to hard line breaks in output")
	rootCmd.Flags().StringVar(&flags.startAt, "start-at", "", "restrict the exported file set to this path under the vault root")
	rootCmd.Flags().StringSliceVar(&flags.skipTags, "skip-tags", nil, "exclude notes whose frontmatter tags contain any of these (repeatable)")
	rootCmd.Flags().StringSliceVar(&flags.onlyTags, "only-tags", nil, "include only notes whose frontmatter tags contain at least one of these (repeatable)")
	rootCmd.Flags().IntVar(&flags.workers, "workers", 0, "worker pool size; defaults to available CPU parallelism")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "run the export without touching the destination and report how many notes would be written")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "print a progress bar while exporting")

	rootCmd.SetVersionTemplate(fmt.Sprintf("obsidian-export %s (commit: %s, built: %s)\n", version, commit, date))
}

// Execute runs the CLI; called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func parseFrontmatterMode(s string) (frontmatter.Mode, error) {
	switch s {
	case "never":
		return frontmatter.Never, nil
	case "always":
		return frontmatter.Always, nil
	case "ifpresent", "":
		return frontmatter.IfPresent, nil
	default:
		return 0, fmt.Errorf("invalid --frontmatter value %q: want never, always, or ifpresent", s)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	mode, err := parseFrontmatterMode(flags.frontmatterMode)
	if err != nil {
		return err
	}

	source, destination := args[0], args[1]
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	sink := diag.NewSink(os.Stderr)
	driver := exporter.NewDriver(exporter.Options{
		Source:            source,
		Destination:       destination,
		Frontmatter:       mode,
		Hidden:            flags.hidden,
		NoGit:             flags.noGit,
		IgnoreFileName:    flags.ignoreFile,
		NoRecursiveEmbeds: flags.noRecursiveEmbeds,
		HardLineBreaks:    flags.hardLinebreaks,
		StartAt:           flags.startAt,
		SkipTags:          flags.skipTags,
		OnlyTags:          flags.onlyTags,
		Workers:           flags.workers,
		DryRun:            flags.dryRun,
		Progress:          flags.verbose,
	}, sink)

	report, err := driver.Export()
	if err != nil {
		if report != nil {
			printSummary(cmd, report)
		}
		return err
	}

	printSummary(cmd, report)
	return nil
}

func printSummary(cmd *cobra.Command, report *exporter.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Exported %d note(s), copied %d asset(s)", report.Exported, report.Copied)
	if report.Failed > 0 {
		fmt.Fprintf(out, ", %d failed", report.Failed)
	}
	fmt.Fprintln(out)
	if len(report.Warnings) > 0 {
		fmt.Fprintf(out, "%d warning(s) reported above\n", len(report.Warnings))
	}
}
