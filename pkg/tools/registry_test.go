package tools

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoTool() ToolDefinition {
	return ToolDefinition{
		Name:        "echo",
		Description: "Echoes its input",
		Parameters: []ToolParameter{
			{Name: "text", Type: "string", Description: "Text to echo", Required: true},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return params["text"], nil
		},
	}
}

func TestRegister(t *testing.T) {
	t.Run("registers valid tool", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(echoTool()))
		assert.True(t, r.Has("echo"))
		assert.Equal(t, []string{"echo"}, r.List())
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(echoTool()))
		assert.Error(t, r.Register(echoTool()))
	})

	t.Run("rejects missing handler", func(t *testing.T) {
		r := NewRegistry()
		def := echoTool()
		def.Handler = nil
		assert.Error(t, r.Register(def))
	})

	t.Run("rejects reserved parameter name", func(t *testing.T) {
		r := NewRegistry()
		def := echoTool()
		def.Parameters = append(def.Parameters, ToolParameter{
			Name: UserIDParam, Type: "string", Description: "nope",
		})
		err := r.Register(def)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "reserved")
	})

	t.Run("rejects invalid parameter type", func(t *testing.T) {
		r := NewRegistry()
		def := echoTool()
		def.Parameters[0].Type = "text"
		assert.Error(t, r.Register(def))
	})
}

func TestSchemas(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(echoTool()))
	require.NoError(t, r.Register(ToolDefinition{
		Name:        "add",
		Description: "Adds numbers",
		Parameters: []ToolParameter{
			{Name: "a", Type: "number", Description: "Left operand", Required: true},
			{Name: "b", Type: "number", Description: "Right operand", Required: true},
		},
		Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
			return params["a"].(float64) + params["b"].(float64), nil
		},
	}))

	schemas := r.Schemas()
	require.Len(t, schemas, 2)

	// Sorted by name
	assert.Equal(t, "add", schemas[0]["name"])
	assert.Equal(t, "echo", schemas[1]["name"])

	inputSchema := schemas[1]["input_schema"].(map[string]interface{})
	assert.Equal(t, "object", inputSchema["type"])
	assert.Equal(t, []string{"text"}, inputSchema["required"])
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("executes registered tool", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(echoTool()))

		result := r.Execute(ctx, "echo", map[string]interface{}{"text": "hello"})
		assert.True(t, result.Success)
		assert.Equal(t, "hello", result.Output)
	})

	t.Run("unknown tool is reported not raised", func(t *testing.T) {
		r := NewRegistry()

		result := r.Execute(ctx, "nope", map[string]interface{}{})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "tool not found")
	})

	t.Run("missing required parameter fails validation", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(echoTool()))

		result := r.Execute(ctx, "echo", map[string]interface{}{})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "validation")
	})

	t.Run("injected user id passes validation", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(echoTool()))

		result := r.Execute(ctx, "echo", map[string]interface{}{
			"text":      "hello",
			UserIDParam: "alice",
		})
		assert.True(t, result.Success)
	})

	t.Run("handler error is reported", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(ToolDefinition{
			Name:        "boom",
			Description: "Always fails",
			Handler: func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
				return nil, fmt.Errorf("kaput")
			},
		}))

		result := r.Execute(ctx, "boom", map[string]interface{}{})
		assert.False(t, result.Success)
		assert.Equal(t, "kaput", result.Error)
	})
}
