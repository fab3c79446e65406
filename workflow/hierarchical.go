package workflow

import "context"

// runHierarchical drives the manager loop over the manager's sub-agent tree
// instead of the flat worker list. Delegation targets that are themselves
// supervisors recurse the same loop one level down, with the hierarchy
// breadcrumb extended so a deep manager can see where it sits.
func (w *Workflow) runHierarchical(ctx context.Context, input string, result *Result) {
	loop := &managerLoop{
		workflow: w,
		manager:  w.manager,
		roster:   w.manager.SubAgents(),
		path:     []string{w.manager.Name()},
		recurse:  true,
	}
	loop.run(ctx, input, result)
}
