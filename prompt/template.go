package prompt

import (
	"fmt"
	"sort"
	"sync"
)

// Builtin template names.
const (
	TemplateBasic          = "basic"
	TemplateToolAware      = "tool_aware"
	TemplateConnectorAware = "connector_aware"
	TemplateFullyAware     = "fully_aware"
)

var builtinTemplates = map[string]string{
	TemplateBasic: `You are {{.name}}. {{default "A helpful assistant." .description}}`,

	TemplateToolAware: `You are {{.name}}. {{default "A helpful assistant." .description}}
You have access to tools. Prefer a tool whenever one matches the request.`,

	TemplateConnectorAware: `You are {{.name}}. {{default "A helpful assistant." .description}}
You are integrated with external services through connectors. Prefer a connector action whenever one matches the request.`,

	TemplateFullyAware: `You are {{.name}}. {{default "A helpful assistant." .description}}
You have access to tools and are integrated with external services through connectors.
Prefer a tool or connector action whenever one matches the request.`,
}

var (
	templateMu sync.RWMutex
	templates  = func() map[string]string {
		m := make(map[string]string, len(builtinTemplates))
		for k, v := range builtinTemplates {
			m[k] = v
		}
		return m
	}()
)

// RegisterTemplate adds or replaces a named prompt template. The body is a
// text/template rendered with the prompt's Variables plus "name" and
// "description".
func RegisterTemplate(name, body string) {
	templateMu.Lock()
	defer templateMu.Unlock()
	templates[name] = body
}

// lookupTemplate returns the template body for name.
func lookupTemplate(name string) (string, error) {
	templateMu.RLock()
	defer templateMu.RUnlock()
	body, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("prompt template %q not found", name)
	}
	return body, nil
}

// TemplateNames lists the registered template names, sorted.
func TemplateNames() []string {
	templateMu.RLock()
	defer templateMu.RUnlock()
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AutoTemplate picks the default template for an agent's capability mix.
func AutoTemplate(hasTools, hasConnectors bool) string {
	switch {
	case hasTools && hasConnectors:
		return TemplateFullyAware
	case hasTools:
		return TemplateToolAware
	case hasConnectors:
		return TemplateConnectorAware
	default:
		return TemplateBasic
	}
}
