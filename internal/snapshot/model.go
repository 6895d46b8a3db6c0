// Package snapshot decodes the YAML snapshots the compiler writes after each
// build into compilations the query engine can answer from.
//
// Ranges are written as flow sequences [startLine, startColumn, endLine,
// endColumn] and positions as [line, column]. Types are written in their
// printed form and parsed back with syntax.ParseType.
package snapshot

// document is the top level of a snapshot file.
type document struct {
	Version    int            `yaml:"version"`
	Files      []fileDoc      `yaml:"files"`
	Namespaces []namespaceDoc `yaml:"namespaces"`
	Opens      []openDoc      `yaml:"opens"`
}

type fileDoc struct {
	URI         string          `yaml:"uri"`
	Text        *string         `yaml:"text"`
	Fragments   []fragmentDoc   `yaml:"fragments"`
	Diagnostics []diagnosticDoc `yaml:"diagnostics"`
}

type diagnosticDoc struct {
	Range    span   `yaml:"range"`
	Severity string `yaml:"severity"`
	Code     string `yaml:"code"`
	Message  string `yaml:"message"`
}

type openDoc struct {
	Namespace string `yaml:"namespace"`
	Source    string `yaml:"source"`
	Open      string `yaml:"open"`
	Alias     string `yaml:"alias"`
}

type namespaceDoc struct {
	Name      string        `yaml:"name"`
	Callables []callableDoc `yaml:"callables"`
	Types     []typeDeclDoc `yaml:"types"`
}

type locationDoc struct {
	Offset point `yaml:"offset"`
	Range  span  `yaml:"range"`
}

type callableDoc struct {
	Name            string              `yaml:"name"`
	Kind            string              `yaml:"kind"`
	Source          string              `yaml:"source"`
	Location        *locationDoc        `yaml:"location"`
	Access          string              `yaml:"access"`
	Library         bool                `yaml:"library"`
	Documentation   []string            `yaml:"documentation"`
	TypeParameters  []string            `yaml:"typeParameters"`
	Parameters      paramTupleDoc       `yaml:"parameters"`
	ReturnType      string              `yaml:"returnType"`
	Functors        []string            `yaml:"functors"`
	Specializations []specializationDoc `yaml:"specializations"`
}

type paramTupleDoc struct {
	Decl  *declDoc        `yaml:"decl"`
	Items []paramTupleDoc `yaml:"items"`
}

type specializationDoc struct {
	Kind     string       `yaml:"kind"`
	Source   string       `yaml:"source"`
	Location *locationDoc `yaml:"location"`
	Body     *scopeDoc    `yaml:"body"`
}

type typeDeclDoc struct {
	Name          string       `yaml:"name"`
	Source        string       `yaml:"source"`
	Location      *locationDoc `yaml:"location"`
	Access        string       `yaml:"access"`
	Library       bool         `yaml:"library"`
	Documentation []string     `yaml:"documentation"`
	Underlying    string       `yaml:"underlying"`
	Items         typeItemDoc  `yaml:"items"`
}

type typeItemDoc struct {
	Name  string        `yaml:"name"`
	Type  string        `yaml:"type"`
	Range span          `yaml:"range"`
	Items []typeItemDoc `yaml:"items"`
}

type declDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Mutable  bool   `yaml:"mutable"`
	Quantum  bool   `yaml:"quantum"`
	Position point  `yaml:"position"`
	Range    span   `yaml:"range"`
}

type scopeDoc struct {
	Known      []declDoc `yaml:"known"`
	Statements []stmtDoc `yaml:"statements"`
}

type blockDoc struct {
	Location *locationDoc `yaml:"location"`
	Body     *scopeDoc    `yaml:"body"`
}

type caseDoc struct {
	Condition *exprDoc `yaml:"condition"`
	Block     blockDoc `yaml:"block"`
}

// stmtDoc is the union of all statement kinds; Kind selects which payload
// fields apply.
type stmtDoc struct {
	Kind         string       `yaml:"kind"`
	Location     *locationDoc `yaml:"location"`
	Declarations []declDoc    `yaml:"declarations"`

	Expr      *exprDoc  `yaml:"expr"`
	Bind      *tupleDoc `yaml:"bind"`
	Lhs       *exprDoc  `yaml:"lhs"`
	Rhs       *exprDoc  `yaml:"rhs"`
	Mutable   bool      `yaml:"mutable"`
	Cases     []caseDoc `yaml:"cases"`
	Default   *blockDoc `yaml:"default"`
	Iterable  *exprDoc  `yaml:"iterable"`
	Condition *exprDoc  `yaml:"condition"`
	Body      *scopeDoc `yaml:"body"`
	Repeat    *blockDoc `yaml:"repeat"`
	Until     *exprDoc  `yaml:"until"`
	Fixup     *blockDoc `yaml:"fixup"`
	Allocate  string    `yaml:"allocate"`
	Init      *exprDoc  `yaml:"init"`
	Outer     *blockDoc `yaml:"outer"`
	Inner     *blockDoc `yaml:"inner"`
}

type symbolDoc struct {
	Namespace string `yaml:"namespace"`
	Name      string `yaml:"name"`
	Range     span   `yaml:"range"`
}

// tupleDoc is a symbol tuple: a leaf carries Name, a tuple carries Items.
type tupleDoc struct {
	Name  string     `yaml:"name"`
	Range span       `yaml:"range"`
	Items []tupleDoc `yaml:"items"`
}

// exprDoc is the union of all expression kinds.
type exprDoc struct {
	Kind  string `yaml:"kind"`
	Type  string `yaml:"type"`
	Range span   `yaml:"range"`

	Symbol   *symbolDoc `yaml:"symbol"`
	TypeArgs []string   `yaml:"typeArgs"`
	Global   string     `yaml:"global"`
	Local    bool       `yaml:"local"`

	Literal string `yaml:"literal"`
	Text    string `yaml:"text"`

	Items         []*exprDoc `yaml:"items"`
	Value         *exprDoc   `yaml:"value"`
	Size          *exprDoc   `yaml:"size"`
	ElementType   string     `yaml:"elementType"`
	ElementTypeAt point      `yaml:"elementTypeAt"`
	Length        *exprDoc   `yaml:"length"`
	Start         *exprDoc   `yaml:"start"`
	Step          *exprDoc   `yaml:"step"`
	End           *exprDoc   `yaml:"end"`
	Array         *exprDoc   `yaml:"array"`
	Index         *exprDoc   `yaml:"index"`
	Expr          *exprDoc   `yaml:"expr"`
	Item          *symbolDoc `yaml:"item"`
	Op            string     `yaml:"op"`
	Operand       *exprDoc   `yaml:"operand"`
	Left          *exprDoc   `yaml:"left"`
	Right         *exprDoc   `yaml:"right"`
	Condition     *exprDoc   `yaml:"condition"`
	Then          *exprDoc   `yaml:"then"`
	Else          *exprDoc   `yaml:"else"`
	Accessor      *exprDoc   `yaml:"accessor"`
	Callee        *exprDoc   `yaml:"callee"`
	Argument      *exprDoc   `yaml:"argument"`
	Inner         *exprDoc   `yaml:"inner"`
	Lambda        string     `yaml:"lambda"`
	Params        *tupleDoc  `yaml:"params"`
	Body          *exprDoc   `yaml:"body"`
}

type paramDoc struct {
	Name   string     `yaml:"name"`
	Range  span       `yaml:"range"`
	Type   string     `yaml:"type"`
	TypeAt point      `yaml:"typeAt"`
	Items  []paramDoc `yaml:"items"`
}

// fragmentDoc is the union of all fragment kinds. Ranges inside the payload
// are relative to the fragment's start.
type fragmentDoc struct {
	Kind        string `yaml:"kind"`
	Range       span   `yaml:"range"`
	Indentation int    `yaml:"indentation"`
	Text        string `yaml:"text"`

	Name           *symbolDoc  `yaml:"name"`
	Namespace      *symbolDoc  `yaml:"namespace"`
	Alias          *symbolDoc  `yaml:"alias"`
	Callable       string      `yaml:"callable"`
	TypeParameters []symbolDoc `yaml:"typeParameters"`
	Parameters     *paramDoc   `yaml:"parameters"`
	ReturnType     string      `yaml:"returnType"`
	ReturnTypeAt   point       `yaml:"returnTypeAt"`
	Specialization string      `yaml:"specialization"`

	Expr      *exprDoc  `yaml:"expr"`
	Bind      *tupleDoc `yaml:"bind"`
	Lhs       *exprDoc  `yaml:"lhs"`
	Rhs       *exprDoc  `yaml:"rhs"`
	Mutable   bool      `yaml:"mutable"`
	Condition *exprDoc  `yaml:"condition"`
	Iterable  *exprDoc  `yaml:"iterable"`
	Fixup     bool      `yaml:"fixup"`
	Allocate  string    `yaml:"allocate"`
	Init      *exprDoc  `yaml:"init"`
}

// span is a range written as [startLine, startColumn, endLine, endColumn].
type span []int

// point is a position written as [line, column].
type point []int
