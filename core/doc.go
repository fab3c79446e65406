// Package core provides the shared contracts of the tvara toolkit. It defines:
//
//   - Directive (the tagged union of model responses: ToolCall, ConnectorCall,
//     FinalText) together with ParseDirective, the single place where raw
//     model text is interpreted
//   - Observer (structured lifecycle events emitted by agents and workflows,
//     replacing any console side channel inside the orchestration core)
//   - Run identifiers shared by agent and workflow invocations
//
// The package holds no execution logic of its own; agents and workflows build
// on these contracts, and downstream consumers (logging, metrics) plug in via
// Observer implementations.
package core
