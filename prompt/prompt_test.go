package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvarahq/tvara-go/connector"
	"github.com/tvarahq/tvara-go/tool"
)

type echoInput struct {
	Text string `json:"text" description:"Text to echo"`
}

func newEchoTool() tool.Tool {
	return tool.NewFunc("echo", "Echoes the input text", func(ctx context.Context, in echoInput) (string, error) {
		return in.Text, nil
	})
}

func TestNewRequiresExactlyOneSource(t *testing.T) {
	_, err := New()
	assert.Error(t, err, "neither template nor raw prompt")

	_, err = New(WithTemplate(TemplateBasic), WithRaw("You are a bot."))
	assert.Error(t, err, "both template and raw prompt")

	_, err = New(WithRaw("You are a bot."))
	assert.NoError(t, err)

	_, err = New(WithTemplate(TemplateBasic))
	assert.NoError(t, err)
}

func TestRenderContainsToolCatalog(t *testing.T) {
	p, err := New(WithRaw("You are a test agent."))
	require.NoError(t, err)

	echo := newEchoTool()
	p.SetTools([]tool.Tool{echo})

	rendered, err := p.Render()
	require.NoError(t, err)

	assert.Contains(t, rendered, "You are a test agent.")
	assert.Contains(t, rendered, echo.Name())
	assert.Contains(t, rendered, echo.Description())
	// The full parameter schema must be rendered, not just the name.
	assert.Contains(t, rendered, `"text"`)
	assert.Contains(t, rendered, "Text to echo")
}

func TestRenderContainsConnectorActions(t *testing.T) {
	p, err := New(WithRaw("You are a test agent."))
	require.NoError(t, err)
	p.SetConnectors([]connector.Connector{connector.NewGitHub("token")})

	rendered, err := p.Render()
	require.NoError(t, err)

	assert.Contains(t, rendered, "github")
	assert.Contains(t, rendered, "list_issues")
	assert.Contains(t, rendered, "owner")
}

func TestRenderAppendsResponseContract(t *testing.T) {
	p, err := New(WithRaw("You are a test agent."))
	require.NoError(t, err)

	rendered, err := p.Render()
	require.NoError(t, err)
	assert.Contains(t, rendered, ResponseContract)
}

func TestRenderBasicOmitsContract(t *testing.T) {
	p, err := New(WithRaw("You are minimal."))
	require.NoError(t, err)
	p.SetTools([]tool.Tool{newEchoTool()})

	rendered, err := p.RenderBasic()
	require.NoError(t, err)
	assert.Equal(t, "You are minimal.", rendered)
}

func TestRenderUnknownTemplate(t *testing.T) {
	p, err := New(WithTemplate("no_such_template"))
	require.NoError(t, err)

	_, err = p.Render()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"no_such_template" not found`)
}

func TestTemplateVariables(t *testing.T) {
	p, err := New(
		WithTemplate(TemplateBasic),
		WithVariables(map[string]string{
			"name":        "Res",
			"description": "A research assistant.",
		}),
	)
	require.NoError(t, err)

	rendered, err := p.RenderBasic()
	require.NoError(t, err)
	assert.Equal(t, "You are Res. A research assistant.", rendered)
}

func TestRegisterTemplate(t *testing.T) {
	RegisterTemplate("pirate", "Arr, ye be {{.name}}.")

	p, err := New(WithTemplate("pirate"), WithVariables(map[string]string{"name": "Flint"}))
	require.NoError(t, err)

	rendered, err := p.RenderBasic()
	require.NoError(t, err)
	assert.Equal(t, "Arr, ye be Flint.", rendered)
	assert.Contains(t, TemplateNames(), "pirate")
}

func TestAutoTemplate(t *testing.T) {
	assert.Equal(t, TemplateFullyAware, AutoTemplate(true, true))
	assert.Equal(t, TemplateToolAware, AutoTemplate(true, false))
	assert.Equal(t, TemplateConnectorAware, AutoTemplate(false, true))
	assert.Equal(t, TemplateBasic, AutoTemplate(false, false))
}
