// Package metrics exposes orchestration activity as Prometheus metrics. The
// Observer plugs into the core observer interface, so the orchestration core
// stays metrics-agnostic.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tvarahq/tvara-go/core"
)

// Observer records lifecycle events into Prometheus metrics. It implements
// core.Observer and is safe for concurrent use.
type Observer struct {
	core.NopObserver

	modelCalls       *prometheus.CounterVec
	toolCalls        *prometheus.CounterVec
	connectorCalls   *prometheus.CounterVec
	agentRuns        *prometheus.CounterVec
	workflowRuns     *prometheus.CounterVec
	agentIters       *prometheus.HistogramVec
	workflowDuration *prometheus.HistogramVec

	mu         sync.Mutex
	iterations map[string]int // iteration high-water, keyed by agent run ID
	modes      map[string]string
	starts     map[string]time.Time
	now        func() time.Time
}

// NewObserver registers the metric vectors against reg and returns the
// observer. Pass prometheus.DefaultRegisterer for the process-wide registry.
func NewObserver(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)

	return &Observer{
		modelCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tvara_model_calls_total",
			Help: "Model responses observed, by agent.",
		}, []string{"agent"}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tvara_tool_calls_total",
			Help: "Tool invocations, by agent, tool, and status.",
		}, []string{"agent", "tool", "status"}),
		connectorCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tvara_connector_calls_total",
			Help: "Connector invocations, by agent, connector, action, and status.",
		}, []string{"agent", "connector", "action", "status"}),
		agentRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tvara_agent_runs_total",
			Help: "Agent run completions, by agent and outcome.",
		}, []string{"agent", "outcome"}),
		workflowRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tvara_workflow_runs_total",
			Help: "Workflow run completions, by workflow, mode, and outcome.",
		}, []string{"workflow", "mode", "outcome"}),
		agentIters: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tvara_agent_iterations",
			Help:    "Resolve-loop iterations used per agent run.",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}, []string{"agent"}),
		workflowDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tvara_workflow_duration_seconds",
			Help:    "Wall-clock duration of workflow runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"workflow", "mode"}),
		iterations: make(map[string]int),
		modes:      make(map[string]string),
		starts:     make(map[string]time.Time),
		now:        time.Now,
	}
}

// OnIterationStart implements core.Observer.
func (o *Observer) OnIterationStart(agent, runID string, iteration, maxIterations int) {
	o.mu.Lock()
	o.iterations[runID] = iteration
	o.mu.Unlock()
}

// OnModelResponse implements core.Observer.
func (o *Observer) OnModelResponse(agent string, iteration int, text string) {
	o.modelCalls.WithLabelValues(agent).Inc()
}

// OnToolResult implements core.Observer.
func (o *Observer) OnToolResult(agent, tool, result string, err error) {
	o.toolCalls.WithLabelValues(agent, tool, statusOf(err)).Inc()
}

// OnConnectorResult implements core.Observer.
func (o *Observer) OnConnectorResult(agent, connector, action, result string, err error) {
	o.connectorCalls.WithLabelValues(agent, connector, action, statusOf(err)).Inc()
}

// OnFinalResponse implements core.Observer.
func (o *Observer) OnFinalResponse(agent, runID, text string) {
	o.agentRuns.WithLabelValues(agent, "final").Inc()
	o.observeIterations(agent, runID)
}

// OnIterationsExhausted implements core.Observer.
func (o *Observer) OnIterationsExhausted(agent, runID string, maxIterations int) {
	o.agentRuns.WithLabelValues(agent, "exhausted").Inc()
	o.observeIterations(agent, runID)
}

// OnWorkflowStart implements core.Observer.
func (o *Observer) OnWorkflowStart(workflow, mode, runID, input string) {
	o.mu.Lock()
	o.modes[workflow] = mode
	o.starts[runID] = o.now()
	o.mu.Unlock()
}

// OnWorkflowFinish implements core.Observer.
func (o *Observer) OnWorkflowFinish(workflow, runID string, success bool, finalOutput string) {
	o.mu.Lock()
	mode := o.modes[workflow]
	started, ok := o.starts[runID]
	delete(o.starts, runID)
	o.mu.Unlock()

	outcome := "success"
	if !success {
		outcome = "failure"
	}
	o.workflowRuns.WithLabelValues(workflow, mode, outcome).Inc()
	if ok {
		o.workflowDuration.WithLabelValues(workflow, mode).Observe(o.now().Sub(started).Seconds())
	}
}

func (o *Observer) observeIterations(agent, runID string) {
	o.mu.Lock()
	used := o.iterations[runID]
	delete(o.iterations, runID)
	o.mu.Unlock()

	if used > 0 {
		o.agentIters.WithLabelValues(agent).Observe(float64(used))
	}
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
