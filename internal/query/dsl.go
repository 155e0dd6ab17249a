package query

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"

	"github.com/good-yellow-bee/kitforge/internal/models"
	apperrors "github.com/good-yellow-bee/kitforge/pkg/errors"
)

// ParsedQuery holds a validated and compiled expression.
type ParsedQuery struct {
	program *vm.Program
	raw     string
	fields  map[string]FieldDef
	now     func() time.Time
}

// Raw returns the original expression string.
func (pq *ParsedQuery) Raw() string {
	return pq.raw
}

// QueryDSL handles expression parsing and validation.
type QueryDSL struct {
	fields map[string]FieldDef
	now    func() time.Time
}

// NewQueryDSL creates a new DSL parser with the given field definitions.
func NewQueryDSL(fields map[string]FieldDef) *QueryDSL {
	return &QueryDSL{fields: fields, now: time.Now}
}

// Parse compiles and validates an expression string.
func (d *QueryDSL) Parse(expression string) (*ParsedQuery, error) {
	if expression == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "empty filter expression")
	}

	program, err := expr.Compile(
		expression,
		expr.Env(d.env(nil)),
		expr.AsBool(),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidArgument, "invalid filter expression")
	}

	// Validate fields and operators
	node := program.Node()
	v := &validationVisitor{fields: d.fields}
	ast.Walk(&node, v)
	if v.err != nil {
		return nil, apperrors.Wrap(v.err, apperrors.CodeInvalidArgument, "invalid filter expression")
	}

	return &ParsedQuery{program: program, raw: expression, fields: d.fields, now: d.now}, nil
}

// env builds the evaluation environment. With a nil project every field
// holds a typed placeholder for compilation.
func (d *QueryDSL) env(p *models.ProjectMetadata) map[string]any {
	return buildEnv(d.fields, d.now, p)
}

func buildEnv(fields map[string]FieldDef, now func() time.Time, p *models.ProjectMetadata) map[string]any {
	env := make(map[string]any, len(fields)+2)
	for name, field := range fields {
		if p == nil || field.value == nil {
			env[name] = zeroValue(field.Type)
			continue
		}
		env[name] = field.value(p)
	}
	env["now"] = func() time.Time { return now() }
	env["duration"] = func(s string) (time.Duration, error) {
		return time.ParseDuration(s)
	}
	return env
}

// Match evaluates the expression against p.
func (pq *ParsedQuery) Match(p *models.ProjectMetadata) (bool, error) {
	out, err := expr.Run(pq.program, buildEnv(pq.fields, pq.now, p))
	if err != nil {
		return false, fmt.Errorf("evaluate %q on %s: %w", pq.raw, p.FolderName, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// validationVisitor checks fields and operators in the AST.
type validationVisitor struct {
	fields map[string]FieldDef
	err    error
}

func (v *validationVisitor) Visit(node *ast.Node) {
	if v.err != nil {
		return
	}

	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if _, ok := v.fields[n.Value]; !ok && !AllowedFunctions[n.Value] && !isBuiltinFunction(n.Value) {
			v.err = fmt.Errorf("unknown field: %s", n.Value)
		}

	case *ast.BinaryNode:
		// Validate operator against field type
		if ident, ok := n.Left.(*ast.IdentifierNode); ok {
			if field, ok := v.fields[ident.Value]; ok {
				if !isLogical(n.Operator) && !field.IsOperatorAllowed(n.Operator) {
					v.err = fmt.Errorf("operator %q not allowed for field %q", n.Operator, ident.Value)
				}
			}
		}

	case *ast.MemberNode:
		if ident, ok := n.Node.(*ast.IdentifierNode); ok {
			if _, ok := v.fields[ident.Value]; ok {
				v.err = fmt.Errorf("field %q does not support member access", ident.Value)
			}
		}

	case *ast.CallNode:
		if ident, ok := n.Callee.(*ast.IdentifierNode); ok {
			if !AllowedFunctions[ident.Value] && !isBuiltinFunction(ident.Value) {
				v.err = fmt.Errorf("function %q is not allowed", ident.Value)
				return
			}
			if ident.Value == "duration" && len(n.Arguments) == 1 {
				if lit, ok := n.Arguments[0].(*ast.StringNode); ok {
					if _, err := time.ParseDuration(lit.Value); err != nil {
						v.err = fmt.Errorf("duration(%q): %w", lit.Value, err)
					}
				}
			}
		}
	}
}

func isLogical(op string) bool {
	switch op {
	case "and", "or", "&&", "||":
		return true
	}
	return false
}

// isBuiltinFunction checks if a function is a built-in expr function.
func isBuiltinFunction(name string) bool {
	builtins := map[string]bool{
		"len": true, "lower": true, "upper": true, "trim": true,
		"string": true,
	}
	return builtins[name]
}
