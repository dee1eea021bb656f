package authrim

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sgrastar/authrim-sub000/graph"
)

//go:embed builtins/*.yaml
var builtinFS embed.FS

// loadBuiltins parses the embedded default flows, keyed by flow type taken
// from the file name. These ship with the binary and back every tenant that
// has no override configured.
func loadBuiltins() (map[string]*graph.Definition, error) {
	entries, err := fs.ReadDir(builtinFS, "builtins")
	if err != nil {
		return nil, err
	}

	flows := make(map[string]*graph.Definition, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		data, err := builtinFS.ReadFile(path.Join("builtins", name))
		if err != nil {
			return nil, err
		}

		var def graph.Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("builtin flow %s: %w", name, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("builtin flow %s: %w", name, err)
		}

		flowType := strings.TrimSuffix(name, ".yaml")
		flows[flowType] = &def
	}
	return flows, nil
}
