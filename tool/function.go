package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tvarahq/tvara-go/internal/util"
)

// FuncTool adapts a plain Go function into a Tool. The parameter schema is
// derived from the function's typed argument struct, and loosely typed model
// input is validated against that schema before the function runs.
//
// A FuncTool has no mutable state after construction and is safe for
// concurrent use.
type FuncTool[I any] struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, input I) (string, error)
}

// NewFunc builds a typed function tool. The schema is reflected from I's
// json and description struct tags; fields tagged omitempty (or declared as
// pointers) are optional.
//
// Example:
//
//	type SumInput struct {
//		A float64 `json:"a" description:"First addend"`
//		B float64 `json:"b" description:"Second addend"`
//	}
//
//	sum := tool.NewFunc("sum", "Add two numbers",
//		func(ctx context.Context, in SumInput) (string, error) {
//			return fmt.Sprintf("%g", in.A+in.B), nil
//		})
func NewFunc[I any](name, description string, fn func(ctx context.Context, input I) (string, error)) *FuncTool[I] {
	var zero I
	return &FuncTool[I]{
		name:        name,
		description: description,
		parameters:  util.CreateSchema(zero),
		fn:          fn,
	}
}

// Name implements Tool.
func (t *FuncTool[I]) Name() string { return t.name }

// Description implements Tool.
func (t *FuncTool[I]) Description() string { return t.description }

// Parameters implements Tool.
func (t *FuncTool[I]) Parameters() map[string]any { return t.parameters }

// Call implements Tool. The loose input (typically a map decoded from the
// model's tool_input JSON) is validated against the reflected schema, then
// round-tripped into the typed argument struct. A bare string input is
// accepted when I has exactly one required string field.
func (t *FuncTool[I]) Call(ctx context.Context, input any) (string, error) {
	args, err := t.coerce(input)
	if err != nil {
		return "", err
	}

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		var ve *util.ValidationError
		if errors.As(err, &ve) {
			return "", NewToolError(t.name, ve.Error(), CodeValidationError)
		}
		return "", NewToolError(t.name, err.Error(), CodeValidationError)
	}

	var typed I
	raw, err := json.Marshal(args)
	if err != nil {
		return "", NewToolError(t.name, fmt.Sprintf("encode arguments: %v", err), CodeValidationError)
	}
	if err := json.Unmarshal(raw, &typed); err != nil {
		return "", NewToolError(t.name, fmt.Sprintf("decode arguments: %v", err), CodeValidationError)
	}

	result, err := t.fn(ctx, typed)
	if err != nil {
		var te *ToolError
		if errors.As(err, &te) {
			return "", te
		}
		return "", NewToolError(t.name, err.Error(), CodeExecutionError)
	}

	return result, nil
}

// coerce normalizes the model-supplied input into an argument map.
func (t *FuncTool[I]) coerce(input any) (map[string]any, error) {
	switch v := input.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		if field, ok := t.soleRequiredString(); ok {
			return map[string]any{field: v}, nil
		}
		// Perhaps the model sent the arguments as a JSON string.
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err == nil {
			return m, nil
		}
		return nil, NewToolError(t.name, "expected structured input, got a plain string", CodeValidationError)
	default:
		return nil, NewToolError(t.name, fmt.Sprintf("unsupported input type %T", input), CodeValidationError)
	}
}

func (t *FuncTool[I]) soleRequiredString() (string, bool) {
	required, _ := t.parameters["required"].([]string)
	if len(required) != 1 {
		return "", false
	}
	properties, _ := t.parameters["properties"].(map[string]any)
	prop, _ := properties[required[0]].(map[string]any)
	if kind, _ := prop["type"].(string); kind != "string" {
		return "", false
	}
	return required[0], true
}
