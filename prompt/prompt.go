// Package prompt builds the text sent to models: an agent persona (raw text
// or a named template), the catalog of available tools and connector actions,
// and the fixed response contract describing how the model must signal a tool
// or connector call.
package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tvarahq/tvara-go/connector"
	"github.com/tvarahq/tvara-go/internal/util"
	"github.com/tvarahq/tvara-go/tool"
)

// ResponseContract is the fixed instruction block appended to every rendered
// prompt. The model must answer with exactly one of the three shapes it
// describes; the contract is textual guidance, enforcement happens in the
// directive parser.
const ResponseContract = `RESPONSE FORMAT
You must respond with exactly ONE of the following:

1. To use a tool, respond with only this JSON object:
{"tool_call": {"tool_name": "<name>", "tool_input": <input>}}

2. To use a connector, respond with only this JSON object:
{"connector_call": {"connector_name": "<name>", "connector_action": "<action>", "connector_input": {<parameters>}}}

3. If no tool or connector applies, respond with your final answer as plain text.

Never mix JSON and free text in the same response.`

// Options configures Prompt construction.
type Options struct {
	// TemplateName selects a registered template. Mutually exclusive with
	// RawPrompt; exactly one must be set.
	TemplateName string

	// RawPrompt is a literal persona text. Mutually exclusive with
	// TemplateName; exactly one must be set.
	RawPrompt string

	// Variables feed template rendering ("name" and "description" are the
	// conventional keys).
	Variables map[string]string
}

// Prompt renders the text an agent sends to its model. Tools and connectors
// are referenced, not owned; attach them with SetTools and SetConnectors
// after construction.
type Prompt struct {
	templateName string
	rawPrompt    string
	variables    map[string]string

	tools      []tool.Tool
	connectors []connector.Connector
}

// New constructs a Prompt. Exactly one of TemplateName or RawPrompt must be
// provided; both or neither is a configuration error.
func New(optFns ...func(o *Options)) (*Prompt, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.TemplateName == "" && opts.RawPrompt == "" {
		return nil, fmt.Errorf("either a template name or a raw prompt must be provided")
	}
	if opts.TemplateName != "" && opts.RawPrompt != "" {
		return nil, fmt.Errorf("provide only one of template name or raw prompt, not both")
	}

	return &Prompt{
		templateName: opts.TemplateName,
		rawPrompt:    opts.RawPrompt,
		variables:    opts.Variables,
	}, nil
}

// WithTemplate selects a registered template by name.
func WithTemplate(name string) func(o *Options) {
	return func(o *Options) { o.TemplateName = name }
}

// WithRaw sets a literal persona text.
func WithRaw(text string) func(o *Options) {
	return func(o *Options) { o.RawPrompt = text }
}

// WithVariables sets the template variables.
func WithVariables(vars map[string]string) func(o *Options) {
	return func(o *Options) { o.Variables = vars }
}

// SetTools attaches the tool references folded into Render output.
func (p *Prompt) SetTools(tools []tool.Tool) { p.tools = tools }

// SetConnectors attaches the connector references folded into Render output.
func (p *Prompt) SetConnectors(connectors []connector.Connector) { p.connectors = connectors }

// Render produces the full prompt: persona, tool catalog, connector catalog,
// and the response contract. It is pure given the prompt's current tools and
// connectors. An unknown template name is a configuration error.
func (p *Prompt) Render() (string, error) {
	persona, err := p.renderPersona()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(persona)

	if len(p.tools) > 0 {
		sb.WriteString("\n\nAVAILABLE TOOLS\n")
		for _, t := range p.tools {
			fmt.Fprintf(&sb, "- %s: %s\n", t.Name(), t.Description())
			if schema := t.Parameters(); len(schema) > 0 {
				fmt.Fprintf(&sb, "  Input schema: %s\n", indentJSON(schema, "  "))
			}
		}
	}

	if len(p.connectors) > 0 {
		sb.WriteString("\n\nAVAILABLE CONNECTORS\n")
		for _, c := range p.connectors {
			fmt.Fprintf(&sb, "- %s:\n", c.Name())
			for _, action := range sortedActions(c.ActionSchema()) {
				params := c.ActionSchema()[action]
				if len(params) == 0 {
					fmt.Fprintf(&sb, "  - %s (no parameters)\n", action)
					continue
				}
				fmt.Fprintf(&sb, "  - %s:\n", action)
				for _, param := range sortedKeys(params) {
					fmt.Fprintf(&sb, "      %s: %s\n", param, params[param])
				}
			}
		}
	}

	sb.WriteString("\n\n")
	sb.WriteString(ResponseContract)

	return sb.String(), nil
}

// RenderBasic produces only the persona, without catalogs or the response
// contract. The zero-capability single-shot path uses this.
func (p *Prompt) RenderBasic() (string, error) {
	return p.renderPersona()
}

func (p *Prompt) renderPersona() (string, error) {
	if p.rawPrompt != "" {
		return util.RenderTemplate(p.rawPrompt, p.templateData())
	}

	body, err := lookupTemplate(p.templateName)
	if err != nil {
		return "", err
	}

	rendered, err := util.RenderTemplate(body, p.templateData())
	if err != nil {
		return "", fmt.Errorf("render template %q: %w", p.templateName, err)
	}

	return rendered, nil
}

func (p *Prompt) templateData() map[string]any {
	data := make(map[string]any, len(p.variables))
	for k, v := range p.variables {
		data[k] = v
	}
	if _, ok := data["name"]; !ok {
		data["name"] = "an assistant"
	}
	if _, ok := data["description"]; !ok {
		data["description"] = ""
	}
	return data
}

func indentJSON(v any, prefix string) string {
	raw, err := json.MarshalIndent(v, prefix, "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}

func sortedActions(schema map[string]map[string]string) []string {
	actions := make([]string, 0, len(schema))
	for action := range schema {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
