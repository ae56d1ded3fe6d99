package lifecycle

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/wassette-go/wassette/pkg/wassetteerr"
)

// ToolFilter is a parsed tool_filter expression: an optional HCL
// boolean predicate over the raw (pre-normalization) exported
// function name, e.g. `name == "echo"` or `name != "debug-only"`.
// A nil ToolFilter keeps every exported function (the "all" default).
type ToolFilter struct {
	expr hcl.Expression
}

// ParseToolFilter parses a tool_filter expression. An empty source
// keeps everything.
func ParseToolFilter(source string) (*ToolFilter, error) {
	if source == "" {
		return &ToolFilter{}, nil
	}
	expr, diags := hclsyntax.ParseExpression([]byte(source), "tool_filter", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, wassetteerr.New(wassetteerr.CodeIntrospectionFailed, "invalid tool_filter expression: "+diags.Error())
	}
	return &ToolFilter{expr: expr}, nil
}

// Keep evaluates the filter against rawName, the pre-normalization
// exported function name. A nil or empty filter always keeps.
func (f *ToolFilter) Keep(rawName string) (bool, error) {
	if f == nil || f.expr == nil {
		return true, nil
	}

	hclCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"name": cty.StringVal(rawName),
		},
	}

	val, diags := f.expr.Value(hclCtx)
	if diags.HasErrors() {
		return false, wassetteerr.New(wassetteerr.CodeIntrospectionFailed,
			fmt.Sprintf("failed to evaluate tool_filter for %q: %s", rawName, diags.Error()))
	}

	if val.Type() == cty.Bool {
		return val.True(), nil
	}
	return !val.IsNull(), nil
}
