package plan

import (
	"time"

	"github.com/sgrastar/authrim-sub000/condition"
	"github.com/sgrastar/authrim-sub000/graph"
)

// FormatVersion identifies the compiled plan layout. Bump it when the
// structure of compiled nodes or transitions changes.
const FormatVersion = "1"

// Stability tags assigned to resolved capabilities.
const (
	// StabilityCore marks capabilities from the fixed core set.
	StabilityCore = "core"
	// StabilityStable marks every other capability.
	StabilityStable = "stable"
)

// Plan is the immutable, execution-optimized form of one graph snapshot.
type Plan struct {
	ID            string
	FormatVersion string
	GraphID       string
	GraphVersion  string
	ProfileID     string
	EntryNodeID   string
	Nodes         map[string]*CompiledNode
	Transitions   map[string][]Transition
	CompiledAt    time.Time
}

// CompiledNode is a resolved execution unit. NextOnSuccess and NextOnError
// hold the first success- and error-typed transition targets, or "" when
// the node has none. Decision and switch nodes additionally keep their
// branch and case configuration for evaluation time; decision branches are
// stored in ascending priority order.
type CompiledNode struct {
	ID           string
	Type         graph.NodeType
	Intent       string
	Capabilities []Capability

	NextOnSuccess string
	NextOnError   string

	Branches      []graph.Branch
	DefaultBranch string
	SwitchKey     string
	Cases         []graph.SwitchCase
	DefaultCase   string
}

// Capability is a concrete interaction request handed to the UI layer.
type Capability struct {
	Type            string         `json:"type"`
	ID              string         `json:"id"`
	Required        bool           `json:"required"`
	Hints           map[string]any `json:"hints,omitempty"`
	ValidationRules map[string]any `json:"validationRules,omitempty"`
	Stability       string         `json:"stability"`
}

// Transition is one compiled outgoing edge. Priority is meaningful only for
// decision-node transitions; unprioritized transitions carry the sentinel
// maximum and sort last.
type Transition struct {
	Target       string
	Type         graph.EdgeType
	SourceHandle string
	Condition    *condition.Expression
	Priority     int
}

// Node returns the compiled node with the given id, or nil.
func (p *Plan) Node(id string) *CompiledNode {
	if p == nil || id == "" {
		return nil
	}
	return p.Nodes[id]
}

// TransitionByHandle returns the node's first transition whose sourceHandle
// equals handle, or nil.
func (p *Plan) TransitionByHandle(nodeID, handle string) *Transition {
	if p == nil || handle == "" {
		return nil
	}
	transitions := p.Transitions[nodeID]
	for i := range transitions {
		if transitions[i].SourceHandle == handle {
			return &transitions[i]
		}
	}
	return nil
}
