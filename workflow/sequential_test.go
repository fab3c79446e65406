package workflow

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvarahq/tvara-go/agent"
	"github.com/tvarahq/tvara-go/model"
)

func TestSequentialChaining(t *testing.T) {
	backendA := model.NewMockModel("m", "out-a")
	backendB := model.NewMockModel("m", "out-b")
	backendC := model.NewMockModel("m", "out-c")

	wf, err := New("pipeline", func(o *Options) {
		o.Agents = []*agent.Agent{
			newMockAgent(t, "a", backendA),
			newMockAgent(t, "b", backendB),
			newMockAgent(t, "c", backendC),
		}
	})
	require.NoError(t, err)

	result := wf.Run(context.Background(), "start")

	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
	assert.Equal(t, "out-c", result.FinalOutput)
	assert.NotEmpty(t, result.RunID)

	require.Len(t, result.AgentOutputs, 3)
	assert.Equal(t, AgentOutput{AgentName: "a", Input: "start", Output: "out-a", Step: 1}, result.AgentOutputs[0])
	assert.Equal(t, AgentOutput{AgentName: "b", Input: "out-a", Output: "out-b", Step: 2}, result.AgentOutputs[1])
	assert.Equal(t, AgentOutput{AgentName: "c", Input: "out-b", Output: "out-c", Step: 3}, result.AgentOutputs[2])

	// Verbatim string chaining: B saw A's output, C saw B's.
	assert.Contains(t, backendB.LastPrompt(), "out-a")
	assert.Contains(t, backendC.LastPrompt(), "out-b")
}

func TestSequentialAbortOnError(t *testing.T) {
	failing := model.NewMockModel("m")
	failing.Err = fmt.Errorf("backend down")

	backendC := model.NewMockModel("m", "never reached")

	wf, err := New("pipeline", func(o *Options) {
		o.Agents = []*agent.Agent{
			newMockAgent(t, "a", model.NewMockModel("m", "out-a")),
			newMockAgent(t, "b", failing),
			newMockAgent(t, "c", backendC),
		}
	})
	require.NoError(t, err)

	result := wf.Run(context.Background(), "start")

	assert.False(t, result.Success)
	assert.Equal(t, "", result.FinalOutput)
	assert.Contains(t, result.Error, "backend down")

	require.Len(t, result.AgentOutputs, 1, "only A's output survives the abort")
	assert.Equal(t, "a", result.AgentOutputs[0].AgentName)
	assert.Equal(t, 0, backendC.CallCount(), "C must never run")
}

func TestRunNeverPanics(t *testing.T) {
	panicky := panicModel{}
	wf, err := New("pipeline", func(o *Options) {
		o.Agents = []*agent.Agent{newMockAgent(t, "a", panicky)}
	})
	require.NoError(t, err)

	var result *Result
	assert.NotPanics(t, func() {
		result = wf.Run(context.Background(), "start")
	})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "panic during workflow run")
}

type panicModel struct{}

func (panicModel) Name() string { return "panic" }

func (panicModel) GetResponse(context.Context, string) (string, error) {
	panic("model blew up")
}
