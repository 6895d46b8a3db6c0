package snapshot

import (
	"errors"
	"fmt"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

var accessLevels = map[string]ast.Access{
	"":         ast.Public,
	"public":   ast.Public,
	"internal": ast.Internal,
}

var functors = map[string]syntax.Functor{
	"Adj": syntax.Adjoint,
	"Ctl": syntax.Controlled,
}

func convertNamespace(nd namespaceDoc) (*ast.Namespace, error) {
	if nd.Name == "" {
		return nil, errors.New("missing namespace name")
	}

	ns := &ast.Namespace{Name: nd.Name}

	for i := range nd.Callables {
		c, err := convertCallable(nd.Name, &nd.Callables[i])
		if err != nil {
			return nil, fmt.Errorf("callable %s: %w", nd.Callables[i].Name, err)
		}

		ns.Callables = append(ns.Callables, c)
	}

	for i := range nd.Types {
		t, err := convertTypeDecl(nd.Name, &nd.Types[i])
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", nd.Types[i].Name, err)
		}

		ns.Types = append(ns.Types, t)
	}

	return ns, nil
}

func convertCallable(namespace string, cd *callableDoc) (*ast.Callable, error) {
	ck, ok := callableKinds[cd.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: callable %q", ErrUnknownKind, cd.Kind)
	}

	access, ok := accessLevels[cd.Access]
	if !ok {
		return nil, fmt.Errorf("%w: access %q", ErrUnknownKind, cd.Access)
	}

	loc, err := convertLocation(cd.Location)
	if err != nil {
		return nil, err
	}

	params, err := convertParamTuple(cd.Parameters)
	if err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}

	ret, err := parseType(cd.ReturnType)
	if err != nil {
		return nil, fmt.Errorf("return type: %w", err)
	}

	if ret == nil {
		ret = syntax.Primitive(syntax.TypeUnit)
	}

	c := &ast.Callable{
		Name:          syntax.QualifiedName{Namespace: namespace, Name: cd.Name},
		Kind:          ck,
		Source:        cd.Source,
		Location:      loc,
		Access:        access,
		Library:       cd.Library,
		Documentation: cd.Documentation,
		Signature: ast.Signature{
			TypeParameters: cd.TypeParameters,
			Parameters:     params,
			ReturnType:     ret,
		},
	}

	for _, name := range cd.Functors {
		f, ok := functors[name]
		if !ok {
			return nil, fmt.Errorf("%w: functor %q", ErrUnknownKind, name)
		}

		c.Signature.Functors = append(c.Signature.Functors, f)
	}

	for i := range cd.Specializations {
		spec, err := convertSpecialization(cd.Source, &cd.Specializations[i])
		if err != nil {
			return nil, fmt.Errorf("%s specialization: %w", cd.Specializations[i].Kind, err)
		}

		c.Specializations = append(c.Specializations, spec)
	}

	return c, nil
}

func convertParamTuple(pd paramTupleDoc) (ast.ParamTuple, error) {
	if pd.Decl != nil {
		if len(pd.Items) > 0 {
			return ast.ParamTuple{}, fmt.Errorf("parameter %s has both a declaration and items", pd.Decl.Name)
		}

		d, err := convertDecl(*pd.Decl)
		if err != nil {
			return ast.ParamTuple{}, err
		}

		return ast.ParamTuple{Decl: d}, nil
	}

	out := ast.ParamTuple{Items: make([]ast.ParamTuple, 0, len(pd.Items))}

	for _, item := range pd.Items {
		p, err := convertParamTuple(item)
		if err != nil {
			return ast.ParamTuple{}, err
		}

		out.Items = append(out.Items, p)
	}

	return out, nil
}

// convertSpecialization defaults the source to the callable's own.
func convertSpecialization(source string, sd *specializationDoc) (*ast.Specialization, error) {
	sk, ok := specializationKinds[sd.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: specialization %q", ErrUnknownKind, sd.Kind)
	}

	loc, err := convertLocation(sd.Location)
	if err != nil {
		return nil, err
	}

	body, err := convertScope(sd.Body)
	if err != nil {
		return nil, err
	}

	if sd.Source != "" {
		source = sd.Source
	}

	return &ast.Specialization{Kind: sk, Source: source, Location: loc, Body: body}, nil
}

func convertTypeDecl(namespace string, td *typeDeclDoc) (*ast.TypeDecl, error) {
	access, ok := accessLevels[td.Access]
	if !ok {
		return nil, fmt.Errorf("%w: access %q", ErrUnknownKind, td.Access)
	}

	loc, err := convertLocation(td.Location)
	if err != nil {
		return nil, err
	}

	underlying, err := parseType(td.Underlying)
	if err != nil {
		return nil, fmt.Errorf("underlying type: %w", err)
	}

	items, err := convertTypeItem(td.Items)
	if err != nil {
		return nil, err
	}

	return &ast.TypeDecl{
		Name:          syntax.QualifiedName{Namespace: namespace, Name: td.Name},
		Source:        td.Source,
		Location:      loc,
		Underlying:    underlying,
		Items:         items,
		Access:        access,
		Library:       td.Library,
		Documentation: td.Documentation,
	}, nil
}

func convertTypeItem(id typeItemDoc) (ast.TypeItem, error) {
	typ, err := parseType(id.Type)
	if err != nil {
		return ast.TypeItem{}, fmt.Errorf("item %s: %w", id.Name, err)
	}

	r, err := id.Range.optional()
	if err != nil {
		return ast.TypeItem{}, fmt.Errorf("item %s: %w", id.Name, err)
	}

	item := ast.TypeItem{Name: id.Name, Type: typ, Range: r}

	for _, child := range id.Items {
		c, err := convertTypeItem(child)
		if err != nil {
			return ast.TypeItem{}, err
		}

		item.Items = append(item.Items, c)
	}

	return item, nil
}
