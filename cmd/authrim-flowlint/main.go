// Command authrim-flowlint validates flow definition files and reports what
// they compile to. It accepts YAML or JSON definitions, runs structural
// validation and plan compilation, and prints a per-node summary.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sgrastar/authrim-sub000/graph"
	"github.com/sgrastar/authrim-sub000/plan"
)

func main() {
	var (
		quiet   = flag.Bool("quiet", false, "suppress the per-node summary; only report errors")
		asJSON  = flag.Bool("json", false, "print the compiled plan summary as JSON")
		verbose = flag.Bool("v", false, "include transitions in the summary")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: authrim-flowlint [flags] <definition.yaml|definition.json> ...")
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		if err := lint(path, *quiet, *asJSON, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func lint(path string, quiet, asJSON, verbose bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var def graph.Definition
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &def)
	default:
		err = yaml.Unmarshal(data, &def)
	}
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if err := def.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	p, err := plan.Compile(&def)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	if quiet {
		return nil
	}
	if asJSON {
		return printJSON(os.Stdout, p)
	}
	printSummary(path, p, verbose)
	return nil
}

type planSummary struct {
	GraphID      string   `json:"graphId"`
	GraphVersion string   `json:"graphVersion"`
	ProfileID    string   `json:"profileId,omitempty"`
	EntryNodeID  string   `json:"entryNodeId"`
	NodeCount    int      `json:"nodeCount"`
	Nodes        []string `json:"nodes"`
}

func printJSON(w *os.File, p *plan.Plan) error {
	summary := planSummary{
		GraphID:      p.GraphID,
		GraphVersion: p.GraphVersion,
		ProfileID:    p.ProfileID,
		EntryNodeID:  p.EntryNodeID,
		NodeCount:    len(p.Nodes),
		Nodes:        sortedNodeIDs(p),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func printSummary(path string, p *plan.Plan, verbose bool) {
	fmt.Printf("%s: ok\n", path)
	fmt.Printf("  graph %s version %s entry %s (%d nodes)\n",
		p.GraphID, p.GraphVersion, p.EntryNodeID, len(p.Nodes))

	for _, id := range sortedNodeIDs(p) {
		node := p.Nodes[id]
		fmt.Printf("  node %-24s type=%-12s intent=%s", id, node.Type, node.Intent)
		if len(node.Capabilities) > 0 {
			types := make([]string, 0, len(node.Capabilities))
			for _, c := range node.Capabilities {
				types = append(types, c.Type)
			}
			fmt.Printf(" capabilities=%s", strings.Join(types, ","))
		}
		fmt.Println()

		if !verbose {
			continue
		}
		for _, t := range p.Transitions[id] {
			handle := ""
			if t.SourceHandle != "" {
				handle = " handle=" + t.SourceHandle
			}
			fmt.Printf("    -> %s (%s)%s\n", t.Target, t.Type, handle)
		}
	}
}

func sortedNodeIDs(p *plan.Plan) []string {
	ids := make([]string, 0, len(p.Nodes))
	for id := range p.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
