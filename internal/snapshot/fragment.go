package snapshot

import (
	"fmt"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

var callableKinds = map[string]ast.CallableKind{
	"function":  ast.Function,
	"operation": ast.Operation,
}

var specializationKinds = map[string]ast.SpecializationKind{
	"body":               ast.Body,
	"adjoint":            ast.AdjointSpecialization,
	"controlled":         ast.ControlledSpecialization,
	"controlled adjoint": ast.ControlledAdjointSpecialization,
}

func convertFragments(fds []fragmentDoc) ([]*fragment.Fragment, error) {
	out := make([]*fragment.Fragment, 0, len(fds))

	for i := range fds {
		f, err := convertFragment(&fds[i])
		if err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}

		out = append(out, f)
	}

	return out, nil
}

func convertFragment(fd *fragmentDoc) (*fragment.Fragment, error) {
	r, err := fd.Range.toRange()
	if err != nil {
		return nil, err
	}

	if fd.Indentation < 0 {
		return nil, fmt.Errorf("negative indentation %d", fd.Indentation)
	}

	kind, err := convertFragmentKind(fd)
	if err != nil {
		return nil, err
	}

	return &fragment.Fragment{Kind: kind, Range: r, Text: fd.Text, Indentation: fd.Indentation}, nil
}

func convertFragmentKind(fd *fragmentDoc) (fragment.Kind, error) {
	var c exprs

	switch fd.Kind {
	case "namespace":
		name, err := convertSymbol(fd.Name)
		if err != nil {
			return nil, err
		}

		return &fragment.NamespaceDeclaration{Name: name}, nil
	case "open":
		return convertOpen(fd)
	case "callable":
		return convertCallableHeader(fd)
	case "type":
		name, err := convertSymbol(fd.Name)
		if err != nil {
			return nil, err
		}

		items, err := convertParam(fd.Parameters)
		if err != nil {
			return nil, fmt.Errorf("type %s items: %w", name.Name, err)
		}

		return &fragment.TypeDefinition{Name: name, Items: items}, nil
	case "specialization":
		sk, ok := specializationKinds[fd.Specialization]
		if !ok {
			return nil, fmt.Errorf("%w: specialization %q", ErrUnknownKind, fd.Specialization)
		}

		return &fragment.SpecializationDeclaration{Kind: sk}, nil
	case "expression":
		k := &fragment.ExpressionStatement{Expr: c.one(fd.Expr)}
		return k, c.err
	case "return":
		k := &fragment.ReturnStatement{Expr: c.one(fd.Expr)}
		return k, c.err
	case "fail":
		k := &fragment.FailStatement{Expr: c.one(fd.Expr)}
		return k, c.err
	case "let":
		lhs, err := convertTuple(fd.Bind)
		if err != nil {
			return nil, err
		}

		k := &fragment.VariableBinding{Lhs: lhs, Rhs: c.one(fd.Rhs), Mutable: fd.Mutable}

		return k, c.err
	case "set":
		k := &fragment.ValueUpdate{Lhs: c.one(fd.Lhs), Rhs: c.one(fd.Rhs)}
		return k, c.err
	case "if":
		k := &fragment.IfClause{Condition: c.one(fd.Condition)}
		return k, c.err
	case "elif":
		k := &fragment.ElifClause{Condition: c.one(fd.Condition)}
		return k, c.err
	case "else":
		return &fragment.ElseClause{}, nil
	case "for":
		v, err := convertTuple(fd.Bind)
		if err != nil {
			return nil, err
		}

		k := &fragment.ForLoopIntro{Variable: v, Iterable: c.one(fd.Iterable)}

		return k, c.err
	case "while":
		k := &fragment.WhileLoopIntro{Condition: c.one(fd.Condition)}
		return k, c.err
	case "repeat":
		return &fragment.RepeatIntro{}, nil
	case "until":
		k := &fragment.UntilSuccess{Condition: c.one(fd.Condition), HasFixup: fd.Fixup}
		return k, c.err
	case "allocation":
		ak, ok := allocationKinds[fd.Allocate]
		if !ok {
			return nil, fmt.Errorf("%w: allocation %q", ErrUnknownKind, fd.Allocate)
		}

		binding, err := convertTuple(fd.Bind)
		if err != nil {
			return nil, err
		}

		k := &fragment.AllocationIntro{Kind: ak, Binding: binding, Init: c.one(fd.Init)}

		return k, c.err
	case "within":
		return &fragment.WithinBlockIntro{}, nil
	case "apply":
		return &fragment.ApplyBlockIntro{}, nil
	case "invalid":
		return &fragment.InvalidFragment{}, nil
	}

	return nil, fmt.Errorf("%w: fragment %q", ErrUnknownKind, fd.Kind)
}

func convertOpen(fd *fragmentDoc) (*fragment.OpenDirective, error) {
	ns, err := convertSymbol(fd.Namespace)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	k := &fragment.OpenDirective{Namespace: ns}

	if fd.Alias != nil {
		alias, err := convertSymbol(fd.Alias)
		if err != nil {
			return nil, fmt.Errorf("open alias: %w", err)
		}

		k.Alias = &alias
	}

	return k, nil
}

func convertCallableHeader(fd *fragmentDoc) (*fragment.CallableDeclaration, error) {
	ck, ok := callableKinds[fd.Callable]
	if !ok {
		return nil, fmt.Errorf("%w: callable %q", ErrUnknownKind, fd.Callable)
	}

	name, err := convertSymbol(fd.Name)
	if err != nil {
		return nil, err
	}

	k := &fragment.CallableDeclaration{Kind: ck, Name: name}

	for i := range fd.TypeParameters {
		tp, err := convertSymbol(&fd.TypeParameters[i])
		if err != nil {
			return nil, fmt.Errorf("type parameter %d: %w", i, err)
		}

		k.TypeParameters = append(k.TypeParameters, tp)
	}

	if k.Parameters, err = convertParam(fd.Parameters); err != nil {
		return nil, fmt.Errorf("%s parameters: %w", name.Name, err)
	}

	if k.ReturnType, err = parseTypeAt(fd.ReturnType, fd.ReturnTypeAt); err != nil {
		return nil, fmt.Errorf("%s return type: %w", name.Name, err)
	}

	return k, nil
}

func convertParam(pd *paramDoc) (fragment.Parameter, error) {
	if pd == nil {
		return fragment.Parameter{}, nil
	}

	if len(pd.Items) > 0 {
		p := fragment.Parameter{Items: make([]fragment.Parameter, 0, len(pd.Items))}

		for i := range pd.Items {
			item, err := convertParam(&pd.Items[i])
			if err != nil {
				return fragment.Parameter{}, err
			}

			p.Items = append(p.Items, item)
		}

		return p, nil
	}

	r, err := pd.Range.optional()
	if err != nil {
		return fragment.Parameter{}, fmt.Errorf("parameter %s: %w", pd.Name, err)
	}

	typ, err := parseTypeAt(pd.Type, pd.TypeAt)
	if err != nil {
		return fragment.Parameter{}, fmt.Errorf("parameter %s: %w", pd.Name, err)
	}

	return fragment.Parameter{Name: syntax.Symbol{Name: pd.Name, Range: r}, Type: typ}, nil
}
