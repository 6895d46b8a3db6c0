package analysis

import (
	"strings"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/symbols"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// CallableSignature renders a callable header, e.g.
// "operation Demo.Prepare(q : Qubit) : Unit is Adj + Ctl".
func CallableSignature(c *ast.Callable) string {
	var sb strings.Builder

	sb.WriteString(c.Kind.String())
	sb.WriteByte(' ')
	sb.WriteString(c.Name.String())

	if len(c.Signature.TypeParameters) > 0 {
		sb.WriteByte('<')

		for i, p := range c.Signature.TypeParameters {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteByte('\'')
			sb.WriteString(p)
		}

		sb.WriteByte('>')
	}

	sb.WriteString(ParamTupleString(c.Signature.Parameters))
	sb.WriteString(" : ")
	sb.WriteString(c.Signature.ReturnType.String())

	if chars := characteristics(c.Signature.Functors); chars != "" {
		sb.WriteString(" is ")
		sb.WriteString(chars)
	}

	return sb.String()
}

// TypeSignature renders a user-defined type declaration.
func TypeSignature(t *ast.TypeDecl) string {
	return "newtype " + t.Name.String() + " = " + typeItemString(t.Items, t.Underlying)
}

// ParamTupleString renders a parameter tuple; the outermost level is always
// parenthesized.
func ParamTupleString(p ast.ParamTuple) string {
	if p.IsLeaf() {
		return "(" + paramString(p) + ")"
	}

	return paramString(p)
}

func paramString(p ast.ParamTuple) string {
	if p.IsLeaf() {
		return declString(p.Decl)
	}

	parts := make([]string, len(p.Items))
	for i, item := range p.Items {
		parts[i] = paramString(item)
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

func declString(d *ast.LocalVariableDeclaration) string {
	if d.Type == nil {
		return d.Name
	}

	return d.Name + " : " + d.Type.String()
}

func typeItemString(item ast.TypeItem, typ *syntax.Type) string {
	if len(item.Items) == 0 {
		t := item.Type
		if t == nil {
			t = typ
		}

		if item.Name == "" {
			return t.String()
		}

		return item.Name + " : " + t.String()
	}

	parts := make([]string, len(item.Items))
	for i, sub := range item.Items {
		parts[i] = typeItemString(sub, nil)
	}

	return "(" + strings.Join(parts, ", ") + ")"
}

func characteristics(functors []syntax.Functor) string {
	sig := ast.Signature{Functors: functors}
	adj, ctl := sig.Supports(syntax.Adjoint), sig.Supports(syntax.Controlled)

	switch {
	case adj && ctl:
		return "Adj + Ctl"
	case adj:
		return "Adj"
	case ctl:
		return "Ctl"
	}

	return ""
}

// Markdown formats a signature and its documentation for hover and
// completion details.
func Markdown(signature string, docs []string) string {
	var sb strings.Builder

	sb.WriteString("```qsharp\n")
	sb.WriteString(signature)
	sb.WriteString("\n```")

	doc := symbols.ParseDocumentation(docs)
	if doc.Summary != "" {
		sb.WriteString("\n\n")
		sb.WriteString(doc.Summary)
	}

	if doc.Description != "" {
		sb.WriteString("\n\n")
		sb.WriteString(doc.Description)
	}

	return sb.String()
}
