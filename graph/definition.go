package graph

import (
	"fmt"
	"time"

	"github.com/sgrastar/authrim-sub000/condition"
)

// NodeType tags the behavior of a flow step. The set is open: unrecognized
// tags from stored definitions pass through and behave as plain
// capability-collecting nodes at execution time.
type NodeType string

const (
	// NodeStart marks the synthetic entry node; it is never shown to a user.
	NodeStart NodeType = "start"
	// NodeEnd terminates the flow.
	NodeEnd NodeType = "end"
	// NodeLogin collects primary credentials.
	NodeLogin NodeType = "login"
	// NodeMFA collects a second factor.
	NodeMFA NodeType = "mfa"
	// NodeRegistration collects new-account data.
	NodeRegistration NodeType = "registration"
	// NodeDecision routes on prioritized conditional branches.
	NodeDecision NodeType = "decision"
	// NodeSwitch routes on value-matched cases in declaration order.
	NodeSwitch NodeType = "switch"
	// NodeInformation displays content and waits for acknowledgement.
	NodeInformation NodeType = "information"
	// NodeError displays a failure and terminates interaction.
	NodeError NodeType = "error"
)

// EdgeType classifies a transition.
type EdgeType string

const (
	// EdgeSuccess is followed when the source node completes normally.
	EdgeSuccess EdgeType = "success"
	// EdgeError is followed when the source node fails.
	EdgeError EdgeType = "error"
	// EdgeConditional is followed when its embedded condition holds.
	EdgeConditional EdgeType = "conditional"
)

// Definition is the editable, versioned description of a flow graph.
type Definition struct {
	ID          string   `json:"id" yaml:"id"`
	FlowVersion string   `json:"flowVersion" yaml:"flowVersion"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	ProfileID   string   `json:"profileId,omitempty" yaml:"profileId,omitempty"`
	Nodes       []Node   `json:"nodes" yaml:"nodes"`
	Edges       []Edge   `json:"edges" yaml:"edges"`
	Metadata    Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Metadata carries authorship information. It plays no part in execution.
type Metadata struct {
	Author    string    `json:"author,omitempty" yaml:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Node is one step of a flow.
type Node struct {
	ID           string               `json:"id" yaml:"id"`
	Type         NodeType             `json:"type" yaml:"type"`
	Intent       string               `json:"intent,omitempty" yaml:"intent,omitempty"`
	Capabilities []CapabilityTemplate `json:"capabilities,omitempty" yaml:"capabilities,omitempty"`
	Config       NodeConfig           `json:"config,omitempty" yaml:"config,omitempty"`
}

// CapabilityTemplate declares one interaction the node may request from the
// client. The compiler resolves it into a concrete capability with a
// deterministic id.
type CapabilityTemplate struct {
	Type            string         `json:"type" yaml:"type"`
	Required        bool           `json:"required,omitempty" yaml:"required,omitempty"`
	Hints           map[string]any `json:"hints,omitempty" yaml:"hints,omitempty"`
	ValidationRules map[string]any `json:"validationRules,omitempty" yaml:"validationRules,omitempty"`
}

// NodeConfig is the type-specific payload of a node. Decision nodes use
// Branches and DefaultBranch; switch nodes use SwitchKey, Cases, and
// DefaultCase; display nodes may carry free-form Properties.
type NodeConfig struct {
	Branches      []Branch       `json:"branches,omitempty" yaml:"branches,omitempty"`
	DefaultBranch string         `json:"defaultBranch,omitempty" yaml:"defaultBranch,omitempty"`
	SwitchKey     string         `json:"switchKey,omitempty" yaml:"switchKey,omitempty"`
	Cases         []SwitchCase   `json:"cases,omitempty" yaml:"cases,omitempty"`
	DefaultCase   string         `json:"defaultCase,omitempty" yaml:"defaultCase,omitempty"`
	Properties    map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Branch is one prioritized conditional branch of a decision node. A nil
// Priority sorts after every declared priority; a nil Condition always
// matches.
type Branch struct {
	ID        string                `json:"id" yaml:"id"`
	Priority  *int                  `json:"priority,omitempty" yaml:"priority,omitempty"`
	Condition *condition.Expression `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// SwitchCase is one value-matched case of a switch node.
type SwitchCase struct {
	ID     string `json:"id" yaml:"id"`
	Values []any  `json:"values" yaml:"values"`
}

// Edge is a directed transition between two node ids.
type Edge struct {
	ID           string                `json:"id,omitempty" yaml:"id,omitempty"`
	Source       string                `json:"source" yaml:"source"`
	Target       string                `json:"target" yaml:"target"`
	Type         EdgeType              `json:"type" yaml:"type"`
	SourceHandle string                `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	Condition    *condition.Expression `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Validate checks the structural invariants every externally sourced
// definition must satisfy before it is trusted. It does not evaluate
// conditions or enforce execution limits.
func (d *Definition) Validate() error {
	if d == nil {
		return fmt.Errorf("definition is nil")
	}
	if d.ID == "" {
		return fmt.Errorf("definition id cannot be empty")
	}
	if d.FlowVersion == "" {
		return fmt.Errorf("definition %q: flowVersion cannot be empty", d.ID)
	}
	if d.Name == "" {
		return fmt.Errorf("definition %q: name cannot be empty", d.ID)
	}
	if len(d.Nodes) == 0 {
		return fmt.Errorf("definition %q: must contain at least one node", d.ID)
	}
	if len(d.Edges) == 0 {
		return fmt.Errorf("definition %q: must contain at least one edge", d.ID)
	}

	nodeIDs := make(map[string]struct{}, len(d.Nodes))
	for i, node := range d.Nodes {
		if node.ID == "" {
			return fmt.Errorf("definition %q: node at index %d has empty id", d.ID, i)
		}
		if node.Type == "" {
			return fmt.Errorf("definition %q: node %q has empty type", d.ID, node.ID)
		}
		if _, dup := nodeIDs[node.ID]; dup {
			return fmt.Errorf("definition %q: duplicate node id %q", d.ID, node.ID)
		}
		nodeIDs[node.ID] = struct{}{}
	}

	for i, edge := range d.Edges {
		if edge.Source == "" || edge.Target == "" {
			return fmt.Errorf("definition %q: edge at index %d missing source or target", d.ID, i)
		}
		if _, ok := nodeIDs[edge.Source]; !ok {
			return fmt.Errorf("definition %q: edge references unknown source %q", d.ID, edge.Source)
		}
		if _, ok := nodeIDs[edge.Target]; !ok {
			return fmt.Errorf("definition %q: edge references unknown target %q", d.ID, edge.Target)
		}
		switch edge.Type {
		case EdgeSuccess, EdgeError, EdgeConditional:
		default:
			return fmt.Errorf("definition %q: edge %s->%s has invalid type %q",
				d.ID, edge.Source, edge.Target, edge.Type)
		}
	}

	return nil
}

// Node returns the node with the given id, or nil.
func (d *Definition) Node(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}
