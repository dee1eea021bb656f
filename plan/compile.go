package plan

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sgrastar/authrim-sub000/graph"
)

const (
	// MaxDecisionBranches caps the branch list of a single decision node.
	MaxDecisionBranches = 50
	// MaxSwitchCases caps the case list of a single switch node.
	MaxSwitchCases = 100

	// unprioritized sorts branches without a declared priority after every
	// declared one.
	unprioritized = math.MaxInt32
)

var (
	// ErrNoNodes is returned when the graph declares no nodes at all.
	ErrNoNodes = errors.New("graph has no nodes")
	// ErrTooManyBranches is returned when a decision node exceeds MaxDecisionBranches.
	ErrTooManyBranches = errors.New("decision node exceeds branch limit")
	// ErrTooManyCases is returned when a switch node exceeds MaxSwitchCases.
	ErrTooManyCases = errors.New("switch node exceeds case limit")
	// ErrDuplicateNode is returned when two nodes share an id.
	ErrDuplicateNode = errors.New("duplicate node id")
)

// intentByType maps node types to their derived intent when the definition
// does not set one explicitly.
var intentByType = map[graph.NodeType]string{
	graph.NodeStart:        "start",
	graph.NodeEnd:          "finish",
	graph.NodeLogin:        "authenticate",
	graph.NodeMFA:          "challenge",
	graph.NodeRegistration: "register",
	graph.NodeDecision:     "decide",
	graph.NodeSwitch:       "route",
	graph.NodeInformation:  "inform",
	graph.NodeError:        "fail",
}

// coreCapabilityTypes is the fixed set tagged [StabilityCore]; everything
// else resolves as [StabilityStable].
var coreCapabilityTypes = map[string]struct{}{
	"identifier":  {},
	"password":    {},
	"otp":         {},
	"totp":        {},
	"webauthn":    {},
	"backup_code": {},
	"consent":     {},
}

// defaultCapabilityHints carries the per-type presentation defaults merged
// under each template's own hints. Template hints win on conflict.
var defaultCapabilityHints = map[string]map[string]any{
	"identifier": {"autocomplete": "username", "inputType": "text"},
	"password":   {"autocomplete": "current-password", "inputType": "password", "masked": true},
	"otp":        {"inputMode": "numeric", "length": 6},
	"totp":       {"inputMode": "numeric", "length": 6},
	"email":      {"autocomplete": "email", "inputType": "email"},
}

// Compile transforms a graph definition into an immutable Plan. It performs
// no I/O; apart from the generated plan id the output is fully determined
// by the input.
func Compile(g *graph.Definition) (*Plan, error) {
	if g == nil || len(g.Nodes) == 0 {
		return nil, ErrNoNodes
	}

	nodes := make(map[string]*CompiledNode, len(g.Nodes))
	for i := range g.Nodes {
		src := &g.Nodes[i]
		if _, dup := nodes[src.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, src.ID)
		}
		compiled, err := compileNode(src)
		if err != nil {
			return nil, err
		}
		nodes[src.ID] = compiled
	}

	transitions := compileTransitions(g, nodes)

	for id, node := range nodes {
		for _, tr := range transitions[id] {
			switch tr.Type {
			case graph.EdgeSuccess:
				if node.NextOnSuccess == "" {
					node.NextOnSuccess = tr.Target
				}
			case graph.EdgeError:
				if node.NextOnError == "" {
					node.NextOnError = tr.Target
				}
			}
		}
	}

	return &Plan{
		ID:            uuid.NewString(),
		FormatVersion: FormatVersion,
		GraphID:       g.ID,
		GraphVersion:  g.FlowVersion,
		ProfileID:     g.ProfileID,
		EntryNodeID:   entryNode(g),
		Nodes:         nodes,
		Transitions:   transitions,
		CompiledAt:    time.Now(),
	}, nil
}

func compileNode(src *graph.Node) (*CompiledNode, error) {
	node := &CompiledNode{
		ID:     src.ID,
		Type:   src.Type,
		Intent: src.Intent,
	}
	if node.Intent == "" {
		if derived, ok := intentByType[src.Type]; ok {
			node.Intent = derived
		} else {
			node.Intent = string(src.Type)
		}
	}

	for _, template := range src.Capabilities {
		node.Capabilities = append(node.Capabilities, resolveCapability(src.ID, template))
	}

	switch src.Type {
	case graph.NodeDecision:
		if len(src.Config.Branches) > MaxDecisionBranches {
			return nil, fmt.Errorf("%w: node %s declares %d", ErrTooManyBranches, src.ID, len(src.Config.Branches))
		}
		node.Branches = sortedBranches(src.Config.Branches)
		node.DefaultBranch = src.Config.DefaultBranch
	case graph.NodeSwitch:
		if len(src.Config.Cases) > MaxSwitchCases {
			return nil, fmt.Errorf("%w: node %s declares %d", ErrTooManyCases, src.ID, len(src.Config.Cases))
		}
		// Case order is declaration order; never reordered.
		node.Cases = append([]graph.SwitchCase(nil), src.Config.Cases...)
		node.SwitchKey = src.Config.SwitchKey
		node.DefaultCase = src.Config.DefaultCase
	}

	return node, nil
}

// resolveCapability merges type defaults under the template's hints and
// assigns the deterministic capability id {nodeId}_{type}.
func resolveCapability(nodeID string, template graph.CapabilityTemplate) Capability {
	hints := map[string]any{}
	for k, v := range defaultCapabilityHints[template.Type] {
		hints[k] = v
	}
	for k, v := range template.Hints {
		hints[k] = v
	}

	stability := StabilityStable
	if _, core := coreCapabilityTypes[template.Type]; core {
		stability = StabilityCore
	}

	var rules map[string]any
	if len(template.ValidationRules) > 0 {
		rules = make(map[string]any, len(template.ValidationRules))
		for k, v := range template.ValidationRules {
			rules[k] = v
		}
	}

	return Capability{
		Type:            template.Type,
		ID:              nodeID + "_" + template.Type,
		Required:        template.Required,
		Hints:           hints,
		ValidationRules: rules,
		Stability:       stability,
	}
}

// compileTransitions groups edges by source in declaration order, then
// stable-sorts each decision node's list by branch priority. Switch nodes
// keep declaration order.
func compileTransitions(g *graph.Definition, nodes map[string]*CompiledNode) map[string][]Transition {
	transitions := make(map[string][]Transition, len(g.Nodes))
	for _, edge := range g.Edges {
		transitions[edge.Source] = append(transitions[edge.Source], Transition{
			Target:       edge.Target,
			Type:         edge.Type,
			SourceHandle: edge.SourceHandle,
			Condition:    edge.Condition,
			Priority:     unprioritized,
		})
	}

	for id, node := range nodes {
		if node.Type != graph.NodeDecision {
			continue
		}
		priorities := make(map[string]int, len(node.Branches))
		for _, branch := range node.Branches {
			if branch.Priority != nil {
				priorities[branch.ID] = *branch.Priority
			}
		}
		list := transitions[id]
		for i := range list {
			if p, ok := priorities[list[i].SourceHandle]; ok {
				list[i].Priority = p
			}
		}
		sort.SliceStable(list, func(a, b int) bool {
			return list[a].Priority < list[b].Priority
		})
	}

	return transitions
}

// sortedBranches returns the branches in ascending priority order, with
// undeclared priorities last. The sort is stable so equal priorities keep
// declaration order.
func sortedBranches(branches []graph.Branch) []graph.Branch {
	out := append([]graph.Branch(nil), branches...)
	sort.SliceStable(out, func(a, b int) bool {
		return branchPriority(out[a]) < branchPriority(out[b])
	})
	return out
}

func branchPriority(b graph.Branch) int {
	if b.Priority == nil {
		return unprioritized
	}
	return *b.Priority
}

// entryNode picks the first start-typed node, falling back to the first
// node in declaration order.
func entryNode(g *graph.Definition) string {
	for i := range g.Nodes {
		if g.Nodes[i].Type == graph.NodeStart {
			return g.Nodes[i].ID
		}
	}
	return g.Nodes[0].ID
}
