package analysis

import (
	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// SymbolKind classifies a document symbol.
type SymbolKind int

const (
	NamespaceSymbol SymbolKind = iota
	FunctionSymbol
	OperationSymbol
	TypeSymbol
	FieldSymbol
)

// DocumentSymbol is a declaration listed in a file outline.
type DocumentSymbol struct {
	Name      string
	Kind      SymbolKind
	Range     syntax.Range
	Container string
}

// DocumentSymbols lists the namespaces, callables, types and named type
// items declared in uri, in source order.
func DocumentSymbols(comp *compilation.Compilation, uri string) []DocumentSymbol {
	file, ok := comp.File(uri)
	if !ok {
		return nil
	}

	var out []DocumentSymbol

	for i := 0; i < file.Tree.Len(); i++ {
		frag := file.Tree.At(i)
		ns, _ := compilation.NamespaceOf(file.Tree, i)

		switch k := frag.Kind.(type) {
		case *fragment.NamespaceDeclaration:
			out = append(out, DocumentSymbol{Name: k.Name.String(), Kind: NamespaceSymbol, Range: frag.Range})
		case *fragment.CallableDeclaration:
			kind := FunctionSymbol
			if k.Kind == ast.Operation {
				kind = OperationSymbol
			}

			out = append(out, DocumentSymbol{Name: k.Name.Name, Kind: kind, Range: frag.Range, Container: ns})
		case *fragment.TypeDefinition:
			out = append(out, DocumentSymbol{Name: k.Name.Name, Kind: TypeSymbol, Range: frag.Range, Container: ns})

			for _, item := range k.Items.Flatten() {
				if item.Name.Name == "" || item.Name.Range == nil {
					continue
				}

				out = append(out, DocumentSymbol{
					Name:      item.Name.Name,
					Kind:      FieldSymbol,
					Range:     item.Name.Range.Offset(frag.Range.Start),
					Container: syntax.QualifiedName{Namespace: ns, Name: k.Name.Name}.String(),
				})
			}
		}
	}

	return out
}
