package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvarahq/tvara-go/agent"
	"github.com/tvarahq/tvara-go/model"
)

func TestHierarchicalDelegateToLeaf(t *testing.T) {
	managerBackend := model.NewMockModel("m",
		`{"action":"delegate","agent_name":"leaf","task_input":"dig"}`,
		`{"action":"complete","final_answer":"dug"}`,
	)
	leafBackend := model.NewMockModel("m", "soil sample")

	leaf := newMockAgent(t, "leaf", leafBackend)
	manager := newMockAgent(t, "root-manager", managerBackend, func(o *agent.Options) {
		o.SubAgents = []*agent.Agent{leaf}
	})

	wf, err := New("hier", func(o *Options) {
		o.Mode = Hierarchical
		o.Manager = manager
	})
	require.NoError(t, err)

	result := wf.Run(context.Background(), "analyze the soil")

	assert.True(t, result.Success)
	assert.Equal(t, "dug", result.FinalOutput)
	require.Len(t, result.AgentOutputs, 1)
	assert.Equal(t, "leaf", result.AgentOutputs[0].AgentName)

	// The manager prompt carries the hierarchy breadcrumb.
	assert.Contains(t, managerBackend.Prompts()[0], "HIERARCHY PATH\nroot-manager")
}

func TestHierarchicalRecursesIntoSubSupervisor(t *testing.T) {
	// root-manager delegates to mid-manager, which delegates to leaf.
	rootBackend := model.NewMockModel("m",
		`{"action":"delegate","agent_name":"mid-manager","task_input":"handle the details"}`,
		`{"action":"complete","final_answer":"all handled"}`,
	)
	midBackend := model.NewMockModel("m",
		`{"action":"delegate","agent_name":"leaf","task_input":"do the work"}`,
		`{"action":"complete","final_answer":"details done"}`,
	)
	leafBackend := model.NewMockModel("m", "work output")

	leaf := newMockAgent(t, "leaf", leafBackend)
	mid := newMockAgent(t, "mid-manager", midBackend, func(o *agent.Options) {
		o.SubAgents = []*agent.Agent{leaf}
	})
	root := newMockAgent(t, "root-manager", rootBackend, func(o *agent.Options) {
		o.SubAgents = []*agent.Agent{mid}
	})

	wf, err := New("hier", func(o *Options) {
		o.Mode = Hierarchical
		o.Manager = root
	})
	require.NoError(t, err)

	result := wf.Run(context.Background(), "big task")

	assert.True(t, result.Success)
	assert.Equal(t, "all handled", result.FinalOutput)
	assert.Equal(t, 2, rootBackend.CallCount())
	assert.Equal(t, 2, midBackend.CallCount())
	assert.Equal(t, 1, leafBackend.CallCount())

	// Both the leaf's run and the nested loop's recursion are recorded; the
	// nested final answer became the completed-task output at the root level.
	names := make([]string, 0, len(result.AgentOutputs))
	for _, out := range result.AgentOutputs {
		names = append(names, out.AgentName)
	}
	assert.Contains(t, names, "leaf")
	assert.Contains(t, names, "mid-manager")

	for _, out := range result.AgentOutputs {
		if out.AgentName == "mid-manager" {
			assert.Equal(t, "details done", out.Output)
		}
	}

	// The nested manager sees the extended breadcrumb.
	assert.Contains(t, midBackend.Prompts()[0], "HIERARCHY PATH\nroot-manager > mid-manager")
}

func TestHierarchicalConstructionRequiresSupervisor(t *testing.T) {
	plain := newMockAgent(t, "plain", model.NewMockModel("m"))

	_, err := New("hier", func(o *Options) {
		o.Mode = Hierarchical
		o.Manager = plain
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no sub-agents")
}
