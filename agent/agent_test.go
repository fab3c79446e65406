package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvarahq/tvara-go/model"
	"github.com/tvarahq/tvara-go/tool"
)

func newTestAgent(t *testing.T, name string, backend model.Model, optFns ...func(o *Options)) *Agent {
	t.Helper()

	base := func(o *Options) {
		o.Model = "mock-model"
		o.APIKey = "test-key"
		o.Backend = backend
	}

	a, err := New(name, append([]func(o *Options){base}, optFns...)...)
	require.NoError(t, err)
	return a
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name        string
		agentName   string
		configure   func(o *Options)
		errContains string
	}{
		{
			name:      "empty model",
			agentName: "a",
			configure: func(o *Options) {
				o.APIKey = "k"
				o.Backend = model.NewMockModel("m")
			},
			errContains: "model must be specified",
		},
		{
			name:      "empty api key",
			agentName: "a",
			configure: func(o *Options) {
				o.Model = "m"
				o.Backend = model.NewMockModel("m")
			},
			errContains: "api key must be specified",
		},
		{
			name:      "invalid name",
			agentName: "9bad name!",
			configure: func(o *Options) {
				o.Model = "m"
				o.APIKey = "k"
				o.Backend = model.NewMockModel("m")
			},
			errContains: "invalid agent name",
		},
		{
			name:      "non-positive max iterations",
			agentName: "a",
			configure: func(o *Options) {
				o.Model = "m"
				o.APIKey = "k"
				o.Backend = model.NewMockModel("m")
				o.MaxIterations = 0
			},
			errContains: "max iterations must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.agentName, tt.configure)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestNewRejectsDuplicateToolNames(t *testing.T) {
	_, err := New("dup", func(o *Options) {
		o.Model = "m"
		o.APIKey = "k"
		o.Backend = model.NewMockModel("m")
		o.Tools = []tool.Tool{tool.NewCalculator(), tool.NewCalculator()}
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate tool name "calculator"`)
}

func TestNewRejectsDuplicateSubAgentPointer(t *testing.T) {
	child := newTestAgent(t, "child", model.NewMockModel("m"))

	_, err := New("parent", func(o *Options) {
		o.Model = "m"
		o.APIKey = "k"
		o.Backend = model.NewMockModel("m")
		o.SubAgents = []*Agent{child, child}
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "appears more than once")
}

func TestIsSupervisor(t *testing.T) {
	child := newTestAgent(t, "child", model.NewMockModel("m"))
	parent := newTestAgent(t, "parent", model.NewMockModel("m"), func(o *Options) {
		o.SubAgents = []*Agent{child}
	})

	assert.True(t, parent.IsSupervisor())
	assert.False(t, child.IsSupervisor())
}

func TestFindSearchesSubtree(t *testing.T) {
	leaf := newTestAgent(t, "leaf", model.NewMockModel("m"))
	mid := newTestAgent(t, "mid", model.NewMockModel("m"), func(o *Options) {
		o.SubAgents = []*Agent{leaf}
	})
	root := newTestAgent(t, "root", model.NewMockModel("m"), func(o *Options) {
		o.SubAgents = []*Agent{mid}
	})

	assert.Same(t, root, root.Find("root"))
	assert.Same(t, leaf, root.Find("leaf"))
	assert.Nil(t, root.Find("missing"))
}
