package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/goreach/internal/config"
	"github.com/dbsmedya/goreach/internal/graph"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Show discovered reference fields per type",
	Long: `Refs loads every collection and displays the reference structure found
in the data.

The output shows:
  - Reference fields per type and the types they point to
  - Record-level link counts per pair of types
  - Referenced types that have no collection
  - Groups of types connected through references

Example:
  goreach refs --data-dir ./export`,
	Args: cobra.NoArgs,
	RunE: runRefs,
}

var refsMermaid bool

func init() {
	refsCmd.Flags().BoolVar(&refsMermaid, "mermaid", false,
		"Print the type graph as a Mermaid flowchart instead")

	rootCmd.AddCommand(refsCmd)
}

func runRefs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.Overrides{})
	if err != nil {
		return err
	}

	log, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ws, err := openWorkspace(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	g := ws.graph

	if refsMermaid {
		printMermaid(g)
		return nil
	}

	printHeader("Reference Fields: %d types, %d links", g.NodeCount(), g.EdgeCount())

	for _, typeName := range ws.snap.Types() {
		res := ws.results[typeName]
		fmt.Fprintln(outputWriter)
		printSection(typeName)
		if res == nil || len(res.Fields) == 0 {
			fmt.Fprintf(outputWriter, "  (no references)\n")
			continue
		}
		for _, path := range res.SortedPaths() {
			targets := make([]string, 0, len(res.Fields[path]))
			for _, target := range res.Fields[path] {
				if node := g.GetNode(target); node != nil && !node.Backed {
					target += " (missing)"
				}
				targets = append(targets, target)
			}
			fmt.Fprintf(outputWriter, "  %s -> %s\n", displayPath(path), strings.Join(targets, ", "))
		}
	}

	fmt.Fprintln(outputWriter)
	printSection("Record Links")
	for _, edge := range g.AllEdges() {
		es := ws.index.Between(edge.From, edge.To)
		fmt.Fprintf(outputWriter, "  %s -> %s: %d link(s) from %d record(s)\n",
			edge.From, edge.To, es.Len(), len(es.SourceIDs()))
	}

	if missing := g.MissingTypes(); len(missing) > 0 {
		fmt.Fprintln(outputWriter)
		printSection("Missing Types")
		for _, typeName := range missing {
			fmt.Fprintf(outputWriter, "  • %s (referenced by %s)\n",
				typeName, strings.Join(g.GetParents(typeName), ", "))
		}
	}

	fmt.Fprintln(outputWriter)
	printSection("Connected Groups")
	for i, comp := range g.Components() {
		fmt.Fprintf(outputWriter, "  [%d] %s\n", i+1, strings.Join(comp, ", "))
	}

	return nil
}

// printMermaid prints the type graph as a Mermaid flowchart, one link per
// field path. Missing types are drawn with a dashed border.
func printMermaid(g *graph.Graph) {
	fmt.Fprintln(outputWriter, "graph LR")
	for _, edge := range g.AllEdges() {
		for _, path := range g.GetEdgeMeta(edge.From, edge.To).Paths {
			fmt.Fprintf(outputWriter, "    %s -->|%s| %s\n", edge.From, displayPath(path), edge.To)
		}
	}
	for _, name := range g.AllNodes() {
		if g.OutDegree(name) == 0 && g.InDegree(name) == 0 {
			fmt.Fprintf(outputWriter, "    %s\n", name)
		}
	}
	for _, name := range g.MissingTypes() {
		fmt.Fprintf(outputWriter, "    style %s stroke-dasharray: 5 5\n", name)
	}
}

// displayPath renders the root path, which is empty, readably.
func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := len(title) + 4
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
	fmt.Fprintf(outputWriter, "  %s\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("-", len(title)+2))
}
