package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/symbols"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// ParameterInfo is one parameter of a signature.
type ParameterInfo struct {
	Label         string
	Documentation string
}

// SignatureHelp describes the call surrounding a position.
type SignatureHelp struct {
	Label           string
	Documentation   string
	Parameters      []ParameterInfo
	ActiveParameter int
}

type callee struct {
	name   syntax.QualifiedName
	params ast.ParamTuple
	docs   []string
}

// argPair matches one parameter with the argument supplied for it. Arg is nil
// when nothing has been typed for the parameter yet.
type argPair struct {
	arg   *syntax.Range
	param ParameterInfo
}

// SignatureHelpAt returns the signature of the innermost call around pos, or
// nil when there is none or its callee cannot be resolved.
func SignatureHelpAt(comp *compilation.Compilation, uri string, pos syntax.Position) *SignatureHelp {
	file, ok := comp.File(uri)
	if !ok || !file.Contains(pos) {
		return nil
	}

	idx, ok := file.FragmentAt(pos, true)
	if !ok {
		if idx, ok = file.Tree.IndexBefore(pos); !ok {
			return nil
		}
	}

	namespace, ok := compilation.NamespaceOf(file.Tree, idx)
	if !ok {
		return nil
	}

	frag := file.Tree.At(idx)
	base := frag.Range.Start

	call, ok := innermostCall(frag, base, pos)
	if !ok || call.Callee.Range == nil || call.Argument == nil || call.Argument.Range == nil {
		return nil
	}

	inner, functors := unwrapFunctors(call.Callee)

	target, ok := resolveCallee(comp, inner, namespace, uri)
	if !ok {
		return nil
	}

	params := controlledParams(target.params, functors)
	doc := symbols.ParseDocumentation(target.docs)

	var pairs []argPair
	if !pairArguments(params, call.Argument, base, doc, &pairs) {
		return nil
	}

	var prefix strings.Builder
	for i := len(functors) - 1; i >= 0; i-- {
		prefix.WriteString(functors[i].String())
		prefix.WriteByte(' ')
	}

	help := &SignatureHelp{
		Label:         prefix.String() + target.name.String() + ParamTupleString(params),
		Documentation: doc.Summary,
	}

	for _, p := range pairs {
		help.Parameters = append(help.Parameters, p.param)
	}

	help.ActiveParameter = activeParameter(pairs, pos)

	return help
}

// innermostCall picks, among the calls whose range contains pos, the last
// one ordered by start and then end.
func innermostCall(frag *fragment.Fragment, base, pos syntax.Position) (*ast.Call, bool) {
	type located struct {
		call *ast.Call
		rng  syntax.Range
	}

	var found []located

	for _, expr := range fragment.Expressions(frag.Kind) {
		expr.Walk(func(e *ast.Expression) bool {
			if call, ok := e.Kind.(*ast.Call); ok && e.Range != nil {
				if rng := e.Range.Offset(base); rng.ContainsInclusive(pos) {
					found = append(found, located{call, rng})
				}
			}

			return true
		})
	}

	if len(found) == 0 {
		return nil, false
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].rng.Compare(found[j].rng) < 0
	})

	return found[len(found)-1].call, true
}

// unwrapFunctors strips functor applications from a callee. The functors are
// returned innermost first.
func unwrapFunctors(e *ast.Expression) (*ast.Expression, []syntax.Functor) {
	var outerFirst []syntax.Functor

	for {
		switch k := e.Kind.(type) {
		case *ast.AdjointApplication:
			outerFirst = append(outerFirst, syntax.Adjoint)
			e = k.Inner
		case *ast.ControlledApplication:
			outerFirst = append(outerFirst, syntax.Controlled)
			e = k.Inner
		default:
			functors := make([]syntax.Functor, len(outerFirst))
			for i, f := range outerFirst {
				functors[len(outerFirst)-1-i] = f
			}

			return e, functors
		}
	}
}

func resolveCallee(comp *compilation.Compilation, e *ast.Expression, namespace, uri string) (callee, bool) {
	id, ok := e.Kind.(*ast.Identifier)
	if !ok || id.Local {
		return callee{}, false
	}

	var res symbols.Resolution

	if id.Global != nil {
		if c, ok := comp.Symbols.LookupCallable(*id.Global); ok {
			res = symbols.Resolution{Name: c.Name, Callable: c}
		} else if t, ok := comp.Symbols.LookupType(*id.Global); ok {
			res = symbols.Resolution{Name: t.Name, Type: t}
		} else {
			return callee{}, false
		}
	} else {
		var err error
		if res, err = comp.Symbols.Resolve(id.Symbol, namespace, uri); err != nil {
			return callee{}, false
		}
	}

	switch {
	case res.Callable != nil:
		return callee{name: res.Name, params: res.Callable.Signature.Parameters, docs: res.Callable.Documentation}, true
	case res.Type != nil:
		return callee{name: res.Name, params: constructorParams(res.Type.Items, res.Type.Underlying), docs: res.Type.Documentation}, true
	}

	return callee{}, false
}

// constructorParams turns the items of a user-defined type into the
// parameters of its constructor.
func constructorParams(item ast.TypeItem, underlying *syntax.Type) ast.ParamTuple {
	if len(item.Items) == 0 {
		typ := item.Type
		if typ == nil {
			typ = underlying
		}

		return ast.ParamTuple{Items: []ast.ParamTuple{{Decl: &ast.LocalVariableDeclaration{Name: item.Name, Type: typ}}}}
	}

	return constructorTuple(item)
}

func constructorTuple(item ast.TypeItem) ast.ParamTuple {
	if len(item.Items) == 0 {
		return ast.ParamTuple{Decl: &ast.LocalVariableDeclaration{Name: item.Name, Type: item.Type}}
	}

	out := ast.ParamTuple{Items: make([]ast.ParamTuple, len(item.Items))}
	for i, sub := range item.Items {
		out.Items[i] = constructorTuple(sub)
	}

	return out
}

// controlledParams prepends one control register per Controlled functor, the
// outermost application being named "cs" and inner ones "cs1", "cs2", and so
// on.
func controlledParams(params ast.ParamTuple, functors []syntax.Functor) ast.ParamTuple {
	count := 0
	for _, f := range functors {
		if f == syntax.Controlled {
			count++
		}
	}

	for _, f := range functors {
		if f != syntax.Controlled {
			continue
		}

		count--

		name := "cs"
		if count > 0 {
			name = fmt.Sprintf("cs%d", count)
		}

		control := ast.ParamTuple{Decl: &ast.LocalVariableDeclaration{
			Name: name,
			Type: syntax.ArrayOf(syntax.Primitive(syntax.TypeQubit)),
		}}
		params = ast.ParamTuple{Items: []ast.ParamTuple{control, params}}
	}

	return params
}

// pairArguments flattens params against arg. A shape mismatch yields a
// single pair for the whole remaining parameter tuple. It fails when a typed
// argument has no range.
func pairArguments(params ast.ParamTuple, arg *ast.Expression, base syntax.Position, doc symbols.Documentation, out *[]argPair) bool {
	var rng *syntax.Range

	if arg != nil {
		if _, missing := arg.Kind.(*ast.MissingExpr); !missing {
			if arg.Range == nil {
				return false
			}

			abs := arg.Range.Offset(base)
			rng = &abs
		}
	}

	if params.IsLeaf() {
		*out = append(*out, argPair{arg: rng, param: ParameterInfo{
			Label:         declString(params.Decl),
			Documentation: doc.Inputs[params.Decl.Name],
		}})

		return true
	}

	var (
		items   []*ast.Expression
		isTuple bool
	)

	if arg != nil {
		var tuple *ast.ValueTuple
		if tuple, isTuple = arg.Kind.(*ast.ValueTuple); isTuple {
			items = tuple.Items
		}
	}

	if rng != nil && !isTuple && len(params.Items) == 1 {
		items = []*ast.Expression{arg}
	} else if rng != nil && !isTuple || len(items) > len(params.Items) {
		*out = append(*out, argPair{arg: rng, param: ParameterInfo{Label: ParamTupleString(params)}})

		return true
	}

	for i, p := range params.Items {
		var item *ast.Expression
		if i < len(items) {
			item = items[i]
		}

		if !pairArguments(p, item, base, doc, out) {
			return false
		}
	}

	return true
}

// activeParameter counts the typed arguments ending strictly before pos and
// clamps the result to the last parameter.
func activeParameter(pairs []argPair, pos syntax.Position) int {
	active := 0

	for i, p := range pairs {
		if p.arg != nil && p.arg.End.Before(pos) {
			active = i + 1
		}
	}

	if active >= len(pairs) {
		active = len(pairs) - 1
	}

	return max(active, 0)
}
