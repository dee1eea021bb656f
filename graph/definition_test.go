package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition() *Definition {
	return &Definition{
		ID:          "flow-login",
		FlowVersion: "1.0.0",
		Name:        "Login",
		Nodes: []Node{
			{ID: "start", Type: NodeStart},
			{ID: "identifier", Type: NodeLogin},
			{ID: "done", Type: NodeEnd},
		},
		Edges: []Edge{
			{Source: "start", Target: "identifier", Type: EdgeSuccess},
			{Source: "identifier", Target: "done", Type: EdgeSuccess},
		},
	}
}

func TestValidateAcceptsWellFormedDefinition(t *testing.T) {
	require.NoError(t, validDefinition().Validate())
}

func TestValidateRejectsStructuralProblems(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"empty id", func(d *Definition) { d.ID = "" }},
		{"empty version", func(d *Definition) { d.FlowVersion = "" }},
		{"empty name", func(d *Definition) { d.Name = "" }},
		{"no nodes", func(d *Definition) { d.Nodes = nil }},
		{"no edges", func(d *Definition) { d.Edges = nil }},
		{"empty node id", func(d *Definition) { d.Nodes[1].ID = "" }},
		{"empty node type", func(d *Definition) { d.Nodes[1].Type = "" }},
		{"duplicate node id", func(d *Definition) { d.Nodes[2].ID = "identifier" }},
		{"edge missing target", func(d *Definition) { d.Edges[0].Target = "" }},
		{"edge unknown source", func(d *Definition) { d.Edges[0].Source = "ghost" }},
		{"edge unknown target", func(d *Definition) { d.Edges[1].Target = "ghost" }},
		{"edge invalid type", func(d *Definition) { d.Edges[0].Type = "maybe" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDefinition()
			tc.mutate(d)
			assert.Error(t, d.Validate())
		})
	}
}

func TestDefinitionJSONRoundTrip(t *testing.T) {
	d := validDefinition()
	d.Nodes[1].Capabilities = []CapabilityTemplate{
		{Type: "identifier", Required: true, Hints: map[string]any{"autocomplete": "username"}},
	}

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded Definition
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NoError(t, decoded.Validate())
	assert.Equal(t, "identifier", decoded.Nodes[1].Capabilities[0].Type)

	node := decoded.Node("identifier")
	require.NotNil(t, node)
	assert.Equal(t, NodeLogin, node.Type)
	assert.Nil(t, decoded.Node("ghost"))
}
