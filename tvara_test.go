package tvara

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvarahq/tvara-go/agent"
	"github.com/tvarahq/tvara-go/core"
	"github.com/tvarahq/tvara-go/model"
	"github.com/tvarahq/tvara-go/workflow"
)

// recordingObserver captures event names in arrival order.
type recordingObserver struct {
	core.NopObserver
	events []string
}

func (r *recordingObserver) OnAgentStart(agent, runID, input string) {
	r.events = append(r.events, "agent.start:"+agent)
}

func (r *recordingObserver) OnFinalResponse(agent, runID, text string) {
	r.events = append(r.events, "agent.final:"+agent)
}

func (r *recordingObserver) OnWorkflowStart(workflow, mode, runID, input string) {
	r.events = append(r.events, "workflow.start:"+workflow)
}

func (r *recordingObserver) OnWorkflowFinish(workflow, runID string, success bool, finalOutput string) {
	r.events = append(r.events, "workflow.finish:"+workflow)
}

func newMockAgent(t *testing.T, name string, responses ...string) *agent.Agent {
	t.Helper()

	a, err := agent.New(name, func(o *agent.Options) {
		o.Model = "mock-model"
		o.APIKey = "test-key"
		o.Backend = model.NewMockModel("m", responses...)
	})
	require.NoError(t, err)
	return a
}

func TestToolkitRegisterAndRunAgent(t *testing.T) {
	tk := New()

	require.NoError(t, tk.RegisterAgent(newMockAgent(t, "echo", "hello back")))

	out, err := tk.RunAgent(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello back", out)
}

func TestToolkitObserverSeesRegisteredAgentEvents(t *testing.T) {
	rec := &recordingObserver{}
	tk := New(WithObserver(rec))

	require.NoError(t, tk.RegisterAgent(newMockAgent(t, "echo", "hello back")))

	_, err := tk.RunAgent(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, []string{"agent.start:echo", "agent.final:echo"}, rec.events)
}

func TestToolkitObserverSeesRegisteredWorkflowEvents(t *testing.T) {
	rec := &recordingObserver{}
	tk := New(WithObserver(rec))

	wf, err := workflow.New("pipeline", func(o *workflow.Options) {
		o.Agents = []*agent.Agent{newMockAgent(t, "only", "final text")}
	})
	require.NoError(t, err)
	require.NoError(t, tk.RegisterWorkflow(wf))

	result, err := tk.RunWorkflow(context.Background(), "pipeline", "go")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Contains(t, rec.events, "workflow.start:pipeline")
	assert.Contains(t, rec.events, "workflow.finish:pipeline")
}

func TestToolkitObserverComposesWithAgentObserver(t *testing.T) {
	own := &recordingObserver{}
	a, err := agent.New("echo", func(o *agent.Options) {
		o.Model = "mock-model"
		o.APIKey = "test-key"
		o.Backend = model.NewMockModel("m", "hello back")
		o.Observer = own
	})
	require.NoError(t, err)

	tkObs := &recordingObserver{}
	tk := New(WithObserver(tkObs))
	require.NoError(t, tk.RegisterAgent(a))

	_, err = tk.RunAgent(context.Background(), "echo", "hello")
	require.NoError(t, err)

	// Both the agent's own observer and the toolkit's see the run, each once.
	assert.Equal(t, []string{"agent.start:echo", "agent.final:echo"}, own.events)
	assert.Equal(t, own.events, tkObs.events)
}

func TestToolkitDuplicateAgentRejected(t *testing.T) {
	tk := New()

	require.NoError(t, tk.RegisterAgent(newMockAgent(t, "dup", "x")))
	err := tk.RegisterAgent(newMockAgent(t, "dup", "y"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"dup" already registered`)
}

func TestToolkitUnknownTargets(t *testing.T) {
	tk := New()

	_, err := tk.RunAgent(context.Background(), "ghost", "x")
	assert.Error(t, err)

	_, err = tk.RunWorkflow(context.Background(), "ghost", "x")
	assert.Error(t, err)
}

func TestToolkitRunWorkflow(t *testing.T) {
	tk := New()

	wf, err := workflow.New("pipeline", func(o *workflow.Options) {
		o.Agents = []*agent.Agent{newMockAgent(t, "only", "final text")}
	})
	require.NoError(t, err)
	require.NoError(t, tk.RegisterWorkflow(wf))

	result, err := tk.RunWorkflow(context.Background(), "pipeline", "go")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "final text", result.FinalOutput)
}

func TestToolkitInventory(t *testing.T) {
	tk := New()

	require.NoError(t, tk.RegisterAgent(newMockAgent(t, "b-agent")))
	require.NoError(t, tk.RegisterAgent(newMockAgent(t, "a-agent")))

	wf, err := workflow.New("wf", func(o *workflow.Options) {
		o.Agents = []*agent.Agent{newMockAgent(t, "worker")}
	})
	require.NoError(t, err)
	require.NoError(t, tk.RegisterWorkflow(wf))

	assert.Equal(t, []string{"a-agent", "b-agent"}, tk.Agents())
	assert.Equal(t, []string{"wf"}, tk.Workflows())

	info := tk.Info()
	require.Len(t, info.Agents, 2)
	assert.Equal(t, "a-agent", info.Agents[0].Name)
	require.Len(t, info.Workflows, 1)
	assert.Equal(t, "sequential", info.Workflows[0].Mode)
	assert.Equal(t, []string{"worker"}, info.Workflows[0].Agents)
}
