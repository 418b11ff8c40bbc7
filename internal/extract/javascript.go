package extract

import (
	"github.com/t14raptor/go-fast/ast"
	"github.com/t14raptor/go-fast/parser"

	"github.com/standardbeagle/codeprofile/internal/debug"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// extractJavaScript tries a full go-fast parse first. go-fast rejects ES
// modules and JSX, so those fall through to tree-sitter and then regex.
func (r *Registry) extractJavaScript(f *types.FileRecord) (*Result, error) {
	if res, err := extractGoFast(f.Sample); err == nil && !res.Empty() {
		return res, nil
	} else if err != nil {
		debug.LogPattern("go-fast rejected %s: %v\n", f.RelPath, err)
	}
	if res, err := r.treeSitter.Extract("JavaScript", f.Ext, f.Sample); err == nil && !res.Empty() {
		return res, nil
	}
	return extractScript(f.Sample, false), nil
}

// extractTypeScript has no AST pass of its own; tree-sitter first, regex after.
func (r *Registry) extractTypeScript(f *types.FileRecord) (*Result, error) {
	if res, err := r.treeSitter.Extract("TypeScript", f.Ext, f.Sample); err == nil && !res.Empty() {
		return res, nil
	}
	return extractScript(f.Sample, true), nil
}

func extractGoFast(content []byte) (*Result, error) {
	program, err := parser.ParseFile(string(content))
	if err != nil {
		return nil, err
	}
	res := newResult()
	for _, stmt := range program.Body {
		visitStatement(res, stmt.Stmt)
	}
	return res, nil
}

func visitStatement(res *Result, stmt ast.Stmt) {
	if stmt == nil {
		return
	}

	switch s := stmt.(type) {
	case *ast.FunctionDeclaration:
		if s.Function == nil || s.Function.Name == nil {
			return
		}
		res.add(types.IdentFunction, s.Function.Name.Name)
		if s.Function.Body != nil {
			for _, inner := range s.Function.Body.List {
				visitStatement(res, inner.Stmt)
			}
		}

	case *ast.ClassDeclaration:
		if s.Class == nil || s.Class.Name == nil {
			return
		}
		res.add(types.IdentClass, s.Class.Name.Name)
		for _, el := range s.Class.Body {
			switch e := el.Element.(type) {
			case *ast.MethodDefinition:
				if e.Key != nil && e.Key.Expr != nil {
					if name := keyName(e.Key.Expr); name != "constructor" {
						res.add(types.IdentFunction, name)
					}
				}
			case *ast.FieldDefinition:
				if e.Key != nil && e.Key.Expr != nil {
					res.add(types.IdentVariable, keyName(e.Key.Expr))
				}
			}
		}

	case *ast.VariableDeclaration:
		for _, decl := range s.List {
			if decl.Target == nil {
				continue
			}
			ident, ok := decl.Target.Target.(*ast.Identifier)
			if !ok {
				continue
			}
			if decl.Initializer == nil || decl.Initializer.Expr == nil {
				res.add(types.IdentVariable, ident.Name)
				continue
			}
			switch init := decl.Initializer.Expr.(type) {
			case *ast.FunctionLiteral, *ast.ArrowFunctionLiteral:
				res.add(types.IdentFunction, ident.Name)
			case *ast.CallExpression:
				res.add(types.IdentVariable, ident.Name)
				if spec := requireSpecifier(init); spec != "" {
					res.Imports = append(res.Imports, spec)
				}
			default:
				res.add(types.IdentVariable, ident.Name)
			}
		}

	case *ast.ExpressionStatement:
		if s.Expression == nil {
			return
		}
		if call, ok := s.Expression.Expr.(*ast.CallExpression); ok {
			if spec := requireSpecifier(call); spec != "" {
				res.Imports = append(res.Imports, spec)
			}
		}

	case *ast.BlockStatement:
		for _, inner := range s.List {
			visitStatement(res, inner.Stmt)
		}
	}
}

// requireSpecifier returns the module of a require("x") call, or "".
func requireSpecifier(call *ast.CallExpression) string {
	if call.Callee == nil || len(call.ArgumentList) != 1 {
		return ""
	}
	callee, ok := call.Callee.Expr.(*ast.Identifier)
	if !ok || callee.Name != "require" {
		return ""
	}
	lit, ok := call.ArgumentList[0].Expr.(*ast.StringLiteral)
	if !ok {
		return ""
	}
	return lit.Value
}

func keyName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.PrivateIdentifier:
		if e.Identifier != nil {
			return e.Identifier.Name
		}
	case *ast.StringLiteral:
		return e.Value
	}
	return ""
}
