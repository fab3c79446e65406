package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvarahq/tvara-go/agent"
	"github.com/tvarahq/tvara-go/model"
)

func newMockAgent(t *testing.T, name string, backend model.Model, optFns ...func(o *agent.Options)) *agent.Agent {
	t.Helper()

	base := func(o *agent.Options) {
		o.Model = "mock-model"
		o.APIKey = "test-key"
		o.Backend = backend
	}

	a, err := agent.New(name, append([]func(o *agent.Options){base}, optFns...)...)
	require.NoError(t, err)
	return a
}

func TestNewValidation(t *testing.T) {
	worker := newMockAgent(t, "worker", model.NewMockModel("m"))
	manager := newMockAgent(t, "manager", model.NewMockModel("m"))

	t.Run("sequential requires agents", func(t *testing.T) {
		_, err := New("wf", func(o *Options) { o.Mode = Sequential })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one agent")
	})

	t.Run("supervised requires manager", func(t *testing.T) {
		_, err := New("wf", func(o *Options) {
			o.Mode = Supervised
			o.Agents = []*agent.Agent{worker}
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires a manager")
	})

	t.Run("manager must not be a worker", func(t *testing.T) {
		_, err := New("wf", func(o *Options) {
			o.Mode = Supervised
			o.Agents = []*agent.Agent{worker, manager}
			o.Manager = manager
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not also be a worker")
	})

	t.Run("distinct agent sharing the manager name is allowed", func(t *testing.T) {
		sameName := newMockAgent(t, "manager", model.NewMockModel("m"))
		_, err := New("wf", func(o *Options) {
			o.Mode = Supervised
			o.Agents = []*agent.Agent{sameName}
			o.Manager = manager
		})
		assert.NoError(t, err, "exclusion is by pointer identity, not name")
	})

	t.Run("hierarchical manager needs sub-agents", func(t *testing.T) {
		_, err := New("wf", func(o *Options) {
			o.Mode = Hierarchical
			o.Manager = manager
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no sub-agents")
	})

	t.Run("reserved modes rejected", func(t *testing.T) {
		for _, mode := range []Mode{Parallel, Conditional} {
			_, err := New("wf", func(o *Options) {
				o.Mode = mode
				o.Agents = []*agent.Agent{worker}
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not implemented")
		}
	})
}

func TestSummary(t *testing.T) {
	a := newMockAgent(t, "writer", model.NewMockModel("m"))
	b := newMockAgent(t, "editor", model.NewMockModel("m"))

	wf, err := New("pipeline", func(o *Options) {
		o.Agents = []*agent.Agent{a, b}
	})
	require.NoError(t, err)

	summary := wf.Summary()
	assert.Contains(t, summary, `"pipeline"`)
	assert.Contains(t, summary, "1. writer")
	assert.Contains(t, summary, "2. editor")
}
