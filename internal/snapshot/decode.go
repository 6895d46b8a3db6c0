package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"

	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/symbols"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

var logger = commonlog.GetLogger("qs-lsp.snapshot")

// ErrUnknownKind is returned when a snapshot names a fragment, statement,
// expression or enumeration value this decoder does not know.
var ErrUnknownKind = errors.New("unknown kind")

// Version is the snapshot format version this decoder understands.
const Version = 1

// Snapshot is one decoded snapshot file.
type Snapshot struct {
	Files      []*compilation.File
	Namespaces []*ast.Namespace
	Opens      []compilation.Directive
}

// TextReader loads the text of a file the snapshot lists without inline text.
type TextReader func(uri string) (string, error)

// Decode reads one snapshot. Unknown fields are rejected.
func Decode(r io.Reader, readText TextReader) (*Snapshot, error) {
	var doc document

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Snapshot{}, nil
		}

		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if doc.Version != 0 && doc.Version != Version {
		return nil, fmt.Errorf("unsupported snapshot version %d", doc.Version)
	}

	return convert(&doc, readText)
}

// Parse decodes a snapshot held in memory.
func Parse(data []byte, readText TextReader) (*Snapshot, error) {
	return Decode(bytes.NewReader(data), readText)
}

func convert(doc *document, readText TextReader) (*Snapshot, error) {
	snap := &Snapshot{}

	for _, fd := range doc.Files {
		f, err := convertFile(fd, readText)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", fd.URI, err)
		}

		snap.Files = append(snap.Files, f)
	}

	for _, nd := range doc.Namespaces {
		ns, err := convertNamespace(nd)
		if err != nil {
			return nil, fmt.Errorf("namespace %s: %w", nd.Name, err)
		}

		snap.Namespaces = append(snap.Namespaces, ns)
	}

	for _, od := range doc.Opens {
		if od.Namespace == "" || od.Open == "" {
			return nil, fmt.Errorf("open directive without namespace in %s", od.Source)
		}

		snap.Opens = append(snap.Opens, compilation.Directive{
			Namespace: od.Namespace,
			Source:    od.Source,
			Open:      symbols.Open{Namespace: od.Open, Alias: od.Alias},
		})
	}

	logger.Debugf("decoded snapshot: %d files, %d namespaces, %d opens",
		len(snap.Files), len(snap.Namespaces), len(snap.Opens))

	return snap, nil
}

func convertFile(fd fileDoc, readText TextReader) (*compilation.File, error) {
	if fd.URI == "" {
		return nil, errors.New("missing uri")
	}

	var text string

	switch {
	case fd.Text != nil:
		text = *fd.Text
	case readText != nil:
		t, err := readText(fd.URI)
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}

		text = t
	}

	frags, err := convertFragments(fd.Fragments)
	if err != nil {
		return nil, err
	}

	f := compilation.NewFile(fd.URI, text, frags)

	for i, dd := range fd.Diagnostics {
		d, err := convertDiagnostic(dd)
		if err != nil {
			return nil, fmt.Errorf("diagnostic %d: %w", i, err)
		}

		f.Diagnostics = append(f.Diagnostics, d)
	}

	return f, nil
}

var severities = map[string]compilation.Severity{
	"":            compilation.SeverityError,
	"error":       compilation.SeverityError,
	"warning":     compilation.SeverityWarning,
	"information": compilation.SeverityInformation,
	"hint":        compilation.SeverityHint,
}

func convertDiagnostic(dd diagnosticDoc) (compilation.Diagnostic, error) {
	r, err := dd.Range.toRange()
	if err != nil {
		return compilation.Diagnostic{}, err
	}

	sev, ok := severities[dd.Severity]
	if !ok {
		return compilation.Diagnostic{}, fmt.Errorf("%w: severity %q", ErrUnknownKind, dd.Severity)
	}

	return compilation.Diagnostic{Range: r, Severity: sev, Code: dd.Code, Message: dd.Message}, nil
}

func (s span) toRange() (syntax.Range, error) {
	if len(s) != 4 {
		return syntax.Range{}, fmt.Errorf("range needs 4 numbers, got %d", len(s))
	}

	r := syntax.NewRange(s[0], s[1], s[2], s[3])
	if r.End.Before(r.Start) {
		return syntax.Range{}, fmt.Errorf("range %v ends before it starts", []int(s))
	}

	return r, nil
}

// optional returns nil for an absent range.
func (s span) optional() (*syntax.Range, error) {
	if s == nil {
		return nil, nil
	}

	r, err := s.toRange()
	if err != nil {
		return nil, err
	}

	return &r, nil
}

func (p point) toPosition() (syntax.Position, error) {
	if len(p) != 2 {
		return syntax.Position{}, fmt.Errorf("position needs 2 numbers, got %d", len(p))
	}

	return syntax.Position{Line: p[0], Column: p[1]}, nil
}

func convertLocation(ld *locationDoc) (*ast.Location, error) {
	if ld == nil {
		return nil, nil
	}

	offset, err := ld.Offset.toPosition()
	if err != nil {
		return nil, fmt.Errorf("location offset: %w", err)
	}

	loc := &ast.Location{Offset: offset}

	if ld.Range != nil {
		if loc.Range, err = ld.Range.toRange(); err != nil {
			return nil, fmt.Errorf("location range: %w", err)
		}
	}

	return loc, nil
}

// parseType parses a printed type; the empty string means no type.
func parseType(s string) (*syntax.Type, error) {
	if s == "" {
		return nil, nil
	}

	return syntax.ParseType(s)
}

// parseTypeAt parses a type written in source; without a position the type
// carries no range.
func parseTypeAt(s string, at point) (*syntax.Type, error) {
	if s == "" {
		return nil, nil
	}

	if at == nil {
		return syntax.ParseType(s)
	}

	pos, err := at.toPosition()
	if err != nil {
		return nil, err
	}

	return syntax.ParseTypeAt(s, pos)
}

func convertSymbol(sd *symbolDoc) (syntax.Symbol, error) {
	if sd == nil {
		return syntax.Symbol{}, errors.New("missing symbol")
	}

	r, err := sd.Range.optional()
	if err != nil {
		return syntax.Symbol{}, err
	}

	return syntax.Symbol{Namespace: sd.Namespace, Name: sd.Name, Range: r}, nil
}

func convertTuple(td *tupleDoc) (syntax.SymbolTuple, error) {
	if td == nil {
		return syntax.SymbolTuple{}, errors.New("missing binding")
	}

	if len(td.Items) == 0 {
		r, err := td.Range.optional()
		if err != nil {
			return syntax.SymbolTuple{}, err
		}

		return syntax.Leaf(syntax.Symbol{Name: td.Name, Range: r}), nil
	}

	items := make([]syntax.SymbolTuple, 0, len(td.Items))

	for i := range td.Items {
		item, err := convertTuple(&td.Items[i])
		if err != nil {
			return syntax.SymbolTuple{}, err
		}

		items = append(items, item)
	}

	return syntax.Tuple(items...), nil
}

func convertDecl(dd declDoc) (*ast.LocalVariableDeclaration, error) {
	typ, err := parseType(dd.Type)
	if err != nil {
		return nil, fmt.Errorf("local %s: %w", dd.Name, err)
	}

	decl := &ast.LocalVariableDeclaration{
		Name:                      dd.Name,
		Type:                      typ,
		IsMutable:                 dd.Mutable,
		HasLocalQuantumDependency: dd.Quantum,
	}

	if dd.Range != nil {
		if decl.Range, err = dd.Range.toRange(); err != nil {
			return nil, fmt.Errorf("local %s: %w", dd.Name, err)
		}
	}

	if dd.Position != nil {
		pos, err := dd.Position.toPosition()
		if err != nil {
			return nil, fmt.Errorf("local %s: %w", dd.Name, err)
		}

		decl.Position = &pos
	}

	return decl, nil
}

func convertDecls(dds []declDoc) ([]*ast.LocalVariableDeclaration, error) {
	out := make([]*ast.LocalVariableDeclaration, 0, len(dds))

	for _, dd := range dds {
		d, err := convertDecl(dd)
		if err != nil {
			return nil, err
		}

		out = append(out, d)
	}

	return out, nil
}
