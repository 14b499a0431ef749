package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	builtindocs "github.com/aidanlsb/vaultkit/docs"
	"github.com/aidanlsb/vaultkit/internal/note"
	"github.com/aidanlsb/vaultkit/internal/ui"
)

const docsDir = "guide"

type docsTopic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
	order float64
	body  string
}

var docsCmd = &cobra.Command{
	Use:   "docs [topic]",
	Short: "Read the bundled guides",
	Long: `Reads the Markdown guides bundled into the vk binary.

Examples:
  vk docs
  vk docs sync`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		topics, err := listDocsTopics(builtindocs.FS)
		if err != nil {
			return handleError(cmd, ErrInternal, err, "Rebuild vk so bundled docs are available")
		}

		if len(args) == 0 {
			if isJSONOutput() {
				outputSuccess(out, topics, &Meta{Count: len(topics)})
				return nil
			}
			fmt.Fprintln(out, ui.Header("Guides"))
			for _, t := range topics {
				fmt.Fprintf(out, "  %-20s %s\n", "vk docs "+t.ID, t.Title)
			}
			return nil
		}

		for _, t := range topics {
			if t.ID == args[0] {
				return outputDocsTopic(cmd, t)
			}
		}
		return handleError(cmd, ErrFileNotFound, fmt.Errorf("no guide named %q", args[0]), "Run 'vk docs' to list the guides")
	},
}

// listDocsTopics reads every guide in fsys, ordered by its front matter
// order key.
func listDocsTopics(fsys fs.FS) ([]docsTopic, error) {
	paths, err := fs.Glob(fsys, path.Join(docsDir, "*"+note.Ext))
	if err != nil {
		return nil, err
	}

	topics := make([]docsTopic, 0, len(paths))
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		n, err := note.Parse(p, data)
		if err != nil {
			return nil, err
		}

		t := docsTopic{ID: n.Name, Title: n.Name, Path: p, body: n.Body}
		if v, ok := n.Frontmatter.Get("title"); ok {
			if s, ok := v.AsString(); ok {
				t.Title = s
			}
		}
		if v, ok := n.Frontmatter.Get("order"); ok {
			t.order, _ = v.AsNumber()
		}
		topics = append(topics, t)
	}

	sort.SliceStable(topics, func(i, j int) bool {
		if topics[i].order != topics[j].order {
			return topics[i].order < topics[j].order
		}
		return topics[i].ID < topics[j].ID
	})
	return topics, nil
}

func outputDocsTopic(cmd *cobra.Command, t docsTopic) error {
	out := cmd.OutOrStdout()

	if isJSONOutput() {
		outputSuccess(out, map[string]string{
			"id":      t.ID,
			"title":   t.Title,
			"path":    t.Path,
			"content": t.body,
		}, nil)
		return nil
	}

	content := t.body
	if f, ok := out.(*os.File); ok {
		if display := ui.NewDisplayContextFor(f); display.IsTTY {
			if rendered, err := ui.RenderMarkdown(t.body, display.TermWidth); err == nil {
				content = rendered
			}
		}
	}
	fmt.Fprint(out, content)
	if !strings.HasSuffix(content, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
