package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/vaultkit/internal/tagger"
	"github.com/aidanlsb/vaultkit/internal/tags"
	"github.com/aidanlsb/vaultkit/internal/ui"
	"github.com/aidanlsb/vaultkit/internal/vault"
)

var (
	tagName   string
	tagDryRun bool
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Add and inspect note tags",
}

var tagApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Add a tag to every note under a directory",
	Long: `Adds a tag to the front matter of every markdown note under --directory.

Notes that already carry the tag, in any letter case and either in front
matter or inline in the body, are left untouched. Other files are reported
and skipped.

Examples:
  vk tag apply --directory ~/vault/people --tag Person
  vk tag apply -d ~/vault --tag '#work' --dry-run`,
	Args: cobra.NoArgs,
	RunE: runTagApply,
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "Count the tags used by notes under a directory",
	Args:  cobra.NoArgs,
	RunE:  runTagList,
}

func runTagApply(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var report func(tagger.Event)
	if !isJSONOutput() {
		report = func(ev tagger.Event) {
			fmt.Fprintf(out, "%s: %s\n", ev.Kind.Message(), ev.Path)
		}
	}

	opts := tagger.ApplyOptions{DryRun: tagDryRun, Walk: walkOptions()}
	summary, err := tagger.Apply(directory, tagName, opts, report)
	if err != nil {
		return fail(cmd, err)
	}

	if isJSONOutput() {
		outputSuccess(out, summary, &Meta{Count: len(summary.Added)})
		return nil
	}
	if tagDryRun {
		fmt.Fprintln(out, ui.TagPreview(len(summary.Added), summary.Tag))
	}
	return nil
}

func runTagList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	opts := walkOptions()
	paths, err := vault.Notes(directory, &opts)
	if err != nil {
		return fail(cmd, err)
	}

	counts := make(map[string]int)
	notes := 0
	for path, err := range paths {
		if err != nil {
			return fail(cmd, err)
		}
		set, err := tags.Extract(path, tags.ModeFrontmatter)
		if err != nil {
			return fail(cmd, err)
		}
		notes++
		for t := range set {
			counts[t]++
		}
	}
	rows := sortTagCounts(counts)

	if isJSONOutput() {
		outputSuccess(out, rows, &Meta{Count: len(rows)})
		return nil
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, ui.Hint(fmt.Sprintf("no tags in %s", ui.Count(notes, "note", "notes"))))
		return nil
	}

	if f, ok := out.(*os.File); ok {
		if display := ui.NewDisplayContextFor(f); display.IsTTY {
			rendered, err := ui.RenderMarkdown(ui.TagTable(rows), display.TermWidth)
			if err == nil {
				fmt.Fprint(out, rendered)
				return nil
			}
			diag.Debug("markdown render failed", "err", err)
		}
	}
	for _, r := range rows {
		fmt.Fprintf(out, "#%s\t%d\n", r.Tag, r.Notes)
	}
	return nil
}

// sortTagCounts orders by note count, then by tag.
func sortTagCounts(counts map[string]int) []ui.TagCount {
	rows := make([]ui.TagCount, 0, len(counts))
	for tag, n := range counts {
		rows = append(rows, ui.TagCount{Tag: tag, Notes: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Notes != rows[j].Notes {
			return rows[i].Notes > rows[j].Notes
		}
		return rows[i].Tag < rows[j].Tag
	})
	return rows
}

func init() {
	addWalkFlags(tagApplyCmd)
	tagApplyCmd.Flags().StringVarP(&tagName, "tag", "t", "", "Tag to add, with or without '#' (required)")
	tagApplyCmd.Flags().BoolVar(&tagDryRun, "dry-run", false, "Report what would change without writing")
	_ = tagApplyCmd.MarkFlagRequired("tag")

	addWalkFlags(tagListCmd)

	tagCmd.AddCommand(tagApplyCmd)
	tagCmd.AddCommand(tagListCmd)
	rootCmd.AddCommand(tagCmd)
}
