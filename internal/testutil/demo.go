package testutil

import (
	"github.com/CWBudde/go-qs-lsp/internal/ast"
	"github.com/CWBudde/go-qs-lsp/internal/compilation"
	"github.com/CWBudde/go-qs-lsp/internal/fragment"
	"github.com/CWBudde/go-qs-lsp/internal/symbols"
	"github.com/CWBudde/go-qs-lsp/internal/syntax"
)

// URIs of the demo files.
const (
	MainURI = "file:///demo/Main.qs"
	MathURI = "file:///demo/Math.qs"
)

// Demo is a small two-file program plus a library namespace.
type Demo struct {
	Compilation *compilation.Compilation
	Main        *Source
	Math        *Source
}

var (
	tInt    = syntax.Primitive(syntax.TypeInt)
	tDouble = syntax.Primitive(syntax.TypeDouble)
	tBool   = syntax.Primitive(syntax.TypeBool)
	tQubit  = syntax.Primitive(syntax.TypeQubit)
	tUnit   = syntax.Primitive(syntax.TypeUnit)
	tResult = syntax.Primitive(syntax.TypeResult)
	tRange  = syntax.Primitive(syntax.TypeRange)
)

// NewDemo builds the demo compilation.
func NewDemo() *Demo {
	main := NewSource(MainURI,
		"namespace Demo {",
		"    open Microsoft.Quantum.Intrinsic;",
		"    open Demo.Math as M;",
		"",
		"    /// # Summary",
		"    /// Prepares the register.",
		"    operation Prepare(q : Qubit, (theta : Double, count : Int)) : Unit is Adj + Ctl {",
		"        let angle = theta * 2.0;",
		"        mutable total = 0;",
		"        for i in 0..count {",
		"            if i == 0 {",
		"                let first = i;",
		"                set total += first;",
		"            } elif i == 1 {",
		"                let second = i;",
		"            } else {",
		"                let third = i;",
		"            }",
		"        }",
		"        use aux = Qubit() {",
		"            H(aux);",
		"        }",
		"        Rx(angle, q);",
		"    }",
		"",
		"    function Helper(x : Int) : Int {",
		"        let f = y -> y + x;",
		"        let z = M.Combine(M.Square(x), x);",
		"        return f(z);",
		"    }",
		"",
		"    operation Retry(q : Qubit) : Result {",
		"        mutable r = Zero;",
		"        repeat {",
		"            let attempt = Measure(q);",
		"            set r = attempt;",
		"        }",
		"        until r == One fixup {",
		"            let fix = 1;",
		"            Reset(q);",
		"        }",
		"        within {",
		"            H(q);",
		"        } apply {",
		"            Controlled Prepare([q], (q, (1.0, 2)));",
		"        }",
		"        return r;",
		"    }",
		"}",
	)

	math := NewSource(MathURI,
		"namespace Demo.Math {",
		"    /// # Summary",
		"    /// Squares a number.",
		"    /// # Input",
		"    /// ## x",
		"    /// The value to square.",
		"    function Square(x : Int) : Int {",
		"        return x * x;",
		"    }",
		"",
		"    function Combine(a : Int, b : Int) : Int {",
		"        return a + b;",
		"    }",
		"",
		"    newtype Complex = (Re : Double, Im : Double);",
		"",
		"    function _Scale(c : Complex, k : Double) : Complex {",
		"        return Complex(c::Re * k, c::Im * k);",
		"    }",
		"}",
	)

	demoNS := buildMain(main)
	mathNS := buildMath(math)

	comp := compilation.New(
		[]*compilation.File{main.File(), math.File()},
		[]*ast.Namespace{demoNS, mathNS, intrinsicNamespace(), canonNamespace()},
		[]compilation.Directive{
			{Namespace: "Demo", Source: MainURI, Open: symbols.Open{Namespace: "Microsoft.Quantum.Intrinsic"}},
			{Namespace: "Demo", Source: MainURI, Open: symbols.Open{Namespace: "Demo.Math", Alias: "M"}},
		},
	)

	return &Demo{Compilation: comp, Main: main, Math: math}
}

func callableLocation(s *Source, line int, name string) *ast.Location {
	start := s.Start(line)
	return &ast.Location{Offset: start, Range: s.Find(line, name).RelativeTo(start)}
}

func bodySpec(s *Source, loc *ast.Location, body *ast.Scope) []*ast.Specialization {
	return []*ast.Specialization{{Kind: ast.Body, Source: s.URI, Location: loc, Body: body}}
}

func buildMain(s *Source) *ast.Namespace {
	s.Frag(0, &fragment.NamespaceDeclaration{Name: s.Anchor(0).NamespaceSym(0, "Demo")})
	s.Frag(1, &fragment.OpenDirective{Namespace: s.Anchor(1).NamespaceSym(1, "Microsoft.Quantum.Intrinsic")})

	alias := s.Anchor(2).NamespaceSym(2, "M")
	s.Frag(2, &fragment.OpenDirective{Namespace: s.Anchor(2).NamespaceSym(2, "Demo.Math"), Alias: &alias})

	return &ast.Namespace{
		Name:      "Demo",
		Callables: []*ast.Callable{buildPrepare(s), buildHelper(s), buildRetry(s)},
	}
}

func buildPrepare(s *Source) *ast.Callable {
	h := s.Anchor(6)
	s.Frag(6, &fragment.CallableDeclaration{
		Kind: ast.Operation,
		Name: h.Sym(6, "Prepare"),
		Parameters: Params(
			h.Param(6, "q", "Qubit"),
			Params(h.Param(6, "theta", "Double"), h.Param(6, "count", "Int")),
		),
		ReturnType: h.TypeIn(6, ": Unit", "Unit"),
	})

	q := h.DeclIn(6, "q :", "q", tQubit, false)
	theta := h.Decl(6, "theta", tDouble, false)
	count := h.Decl(6, "count", tInt, false)
	params := []*ast.LocalVariableDeclaration{q, theta, count}

	// let angle = theta * 2.0;
	a7 := s.Anchor(7)
	angle := a7.Decl(7, "angle", tDouble, false)
	rhs7 := a7.Binary(7, "theta * 2.0", "*", tDouble, a7.Local(7, "theta", tDouble), a7.Lit(7, "2.0", ast.DoubleLiteral, tDouble))
	lhs7 := syntax.Leaf(a7.Sym(7, "angle"))
	s7 := s.Stmt(7, &ast.VariableDeclaration{Lhs: lhs7, Rhs: rhs7}, angle)
	s.Frag(7, &fragment.VariableBinding{Lhs: lhs7, Rhs: rhs7})

	// mutable total = 0;
	a8 := s.Anchor(8)
	total := a8.Decl(8, "total", tInt, true)
	rhs8 := a8.Lit(8, "0", ast.IntLiteral, tInt)
	lhs8 := syntax.Leaf(a8.Sym(8, "total"))
	s8 := s.Stmt(8, &ast.VariableDeclaration{Lhs: lhs8, Rhs: rhs8, Mutable: true}, total)
	s.Frag(8, &fragment.VariableBinding{Lhs: lhs8, Rhs: rhs8, Mutable: true})

	// for i in 0..count {
	a9 := s.Anchor(9)
	i := a9.DeclIn(9, "for i", "i", tInt, false)
	iterable := a9.Expr(9, "0..count", tRange, &ast.RangeLiteral{
		Start: a9.Lit(9, "0", ast.IntLiteral, tInt),
		End:   a9.Local(9, "count", tInt),
	})
	loopVar := syntax.Leaf(a9.SymIn(9, "for i", "i"))
	s.Frag(9, &fragment.ForLoopIntro{Variable: loopVar, Iterable: iterable})

	inLoop := Known(params, []*ast.LocalVariableDeclaration{angle, total, i})

	// if i == 0 {
	a10 := s.Anchor(10)
	cond10 := a10.Binary(10, "i == 0", "==", tBool, a10.LocalIn(10, "i ==", "i", tInt), a10.Lit(10, "0", ast.IntLiteral, tInt))
	s.Frag(10, &fragment.IfClause{Condition: cond10})

	a11 := s.Anchor(11)
	first := a11.Decl(11, "first", tInt, false)
	lhs11 := syntax.Leaf(a11.Sym(11, "first"))
	rhs11 := a11.LocalIn(11, "= i", "i", tInt)
	s11 := s.Stmt(11, &ast.VariableDeclaration{Lhs: lhs11, Rhs: rhs11}, first)
	s.Frag(11, &fragment.VariableBinding{Lhs: lhs11, Rhs: rhs11})

	a12 := s.Anchor(12)
	upd12 := &fragment.ValueUpdate{Lhs: a12.Local(12, "total", tInt), Rhs: a12.Local(12, "first", tInt)}
	s12 := s.Stmt(12, &ast.ValueUpdate{Lhs: upd12.Lhs, Rhs: upd12.Rhs})
	s.Frag(12, upd12)

	// } elif i == 1 {
	a13 := s.AnchorAt(13, "elif")
	cond13 := a13.Binary(13, "i == 1", "==", tBool, a13.LocalIn(13, "i ==", "i", tInt), a13.Lit(13, "1", ast.IntLiteral, tInt))
	s.FragAt(13, "elif", &fragment.ElifClause{Condition: cond13})

	a14 := s.Anchor(14)
	second := a14.Decl(14, "second", tInt, false)
	lhs14 := syntax.Leaf(a14.Sym(14, "second"))
	rhs14 := a14.LocalIn(14, "= i", "i", tInt)
	s14 := s.Stmt(14, &ast.VariableDeclaration{Lhs: lhs14, Rhs: rhs14}, second)
	s.Frag(14, &fragment.VariableBinding{Lhs: lhs14, Rhs: rhs14})

	// } else {
	s.FragAt(15, "else", &fragment.ElseClause{})

	a16 := s.Anchor(16)
	third := a16.Decl(16, "third", tInt, false)
	lhs16 := syntax.Leaf(a16.Sym(16, "third"))
	rhs16 := a16.LocalIn(16, "= i", "i", tInt)
	s16 := s.Stmt(16, &ast.VariableDeclaration{Lhs: lhs16, Rhs: rhs16}, third)
	s.Frag(16, &fragment.VariableBinding{Lhs: lhs16, Rhs: rhs16})

	s10 := s.BlockStmt(10, 17, &ast.Conditional{
		Cases: []ast.ConditionalBlock{
			{Condition: cond10, Block: ast.Block{Location: s.Loc(10, "", 13), Body: Scope(inLoop, s11, s12)}},
			{Condition: cond13, Block: ast.Block{Location: s.Loc(13, "elif", 15), Body: Scope(inLoop, s14)}},
		},
		Default: &ast.Block{Location: s.Loc(15, "else", 17), Body: Scope(inLoop, s16)},
	})

	s9 := s.BlockStmt(9, 18, &ast.ForLoop{Variable: loopVar, Iterable: iterable, Body: Scope(inLoop, s10)})

	// use aux = Qubit() {
	a19 := s.Anchor(19)
	aux := a19.Decl(19, "aux", tQubit, false)
	binding := syntax.Leaf(a19.Sym(19, "aux"))
	init := a19.Expr(19, "Qubit()", tQubit, &ast.Allocation{})
	s.Frag(19, &fragment.AllocationIntro{Kind: ast.Use, Binding: binding, Init: init})

	a20 := s.Anchor(20)
	call20 := a20.Call(20, "H(aux)", tUnit,
		a20.Global(20, "H", "Microsoft.Quantum.Intrinsic.H", nil),
		a20.Tuple(20, "(aux)", a20.Local(20, "aux", tQubit)))
	s20 := s.Stmt(20, &ast.ExpressionStatement{Expr: call20})
	s.Frag(20, &fragment.ExpressionStatement{Expr: call20})

	s19 := s.BlockStmt(19, 21, &ast.AllocationScope{
		Kind:    ast.Use,
		Binding: binding,
		Init:    init,
		Body:    Scope(Known(params, []*ast.LocalVariableDeclaration{angle, total, aux}), s20),
	})

	// Rx(angle, q);
	a22 := s.Anchor(22)
	call22 := a22.Call(22, "Rx(angle, q)", tUnit,
		a22.Global(22, "Rx", "Microsoft.Quantum.Intrinsic.Rx", nil),
		a22.Tuple(22, "(angle, q)", a22.Local(22, "angle", tDouble), a22.LocalIn(22, "q)", "q", tQubit)))
	s22 := s.Stmt(22, &ast.ExpressionStatement{Expr: call22})
	s.Frag(22, &fragment.ExpressionStatement{Expr: call22})

	loc := callableLocation(s, 6, "Prepare")

	return &ast.Callable{
		Name:   syntax.QualifiedName{Namespace: "Demo", Name: "Prepare"},
		Kind:   ast.Operation,
		Source: s.URI,
		Signature: ast.Signature{
			Parameters: Tuple(Leaf(q), Tuple(Leaf(theta), Leaf(count))),
			ReturnType: tUnit,
			Functors:   []syntax.Functor{syntax.Adjoint, syntax.Controlled},
		},
		Location:        loc,
		Specializations: bodySpec(s, loc, Scope(params, s7, s8, s9, s19, s22)),
		Documentation:   []string{"/// # Summary", "/// Prepares the register."},
	}
}

func buildHelper(s *Source) *ast.Callable {
	h := s.Anchor(25)
	s.Frag(25, &fragment.CallableDeclaration{
		Kind:       ast.Function,
		Name:       h.Sym(25, "Helper"),
		Parameters: Params(h.Param(25, "x", "Int")),
		ReturnType: h.TypeIn(25, ": Int {", "Int"),
	})

	x := h.DeclIn(25, "x :", "x", tInt, false)
	params := []*ast.LocalVariableDeclaration{x}

	// let f = y -> y + x;
	a26 := s.Anchor(26)
	f := a26.Decl(26, "f", syntax.FunctionOf(tInt, tInt), false)
	lambda := a26.Expr(26, "y -> y + x", syntax.FunctionOf(tInt, tInt), &ast.Lambda{
		Kind:   ast.FunctionLambda,
		Params: syntax.Leaf(a26.SymIn(26, "y ->", "y")),
		Body: a26.Binary(26, "y + x", "+", tInt,
			a26.LocalIn(26, "y +", "y", tInt), a26.LocalIn(26, "+ x", "x", tInt)),
	})
	lhs26 := syntax.Leaf(a26.Sym(26, "f"))
	s26 := s.Stmt(26, &ast.VariableDeclaration{Lhs: lhs26, Rhs: lambda}, f)
	s.Frag(26, &fragment.VariableBinding{Lhs: lhs26, Rhs: lambda})

	// let z = M.Combine(M.Square(x), x);
	a27 := s.Anchor(27)
	z := a27.Decl(27, "z", tInt, false)
	inner := a27.Call(27, "M.Square(x)", tInt,
		a27.Global(27, "M.Square", "Demo.Math.Square", syntax.FunctionOf(tInt, tInt)),
		a27.Tuple(27, "(x)", a27.LocalIn(27, "(x)", "x", tInt)))
	outer := a27.Call(27, "M.Combine(M.Square(x), x)", tInt,
		a27.Global(27, "M.Combine", "Demo.Math.Combine", syntax.FunctionOf(syntax.TupleOf(tInt, tInt), tInt)),
		a27.Tuple(27, "(M.Square(x), x)", inner, a27.LocalIn(27, ", x)", "x", tInt)))
	lhs27 := syntax.Leaf(a27.Sym(27, "z"))
	s27 := s.Stmt(27, &ast.VariableDeclaration{Lhs: lhs27, Rhs: outer}, z)
	s.Frag(27, &fragment.VariableBinding{Lhs: lhs27, Rhs: outer})

	// return f(z);
	a28 := s.Anchor(28)
	call28 := a28.Call(28, "f(z)", tInt,
		a28.LocalIn(28, "f(", "f", syntax.FunctionOf(tInt, tInt)),
		a28.Tuple(28, "(z)", a28.Local(28, "z", tInt)))
	s28 := s.Stmt(28, &ast.ReturnStatement{Expr: call28})
	s.Frag(28, &fragment.ReturnStatement{Expr: call28})

	loc := callableLocation(s, 25, "Helper")

	return &ast.Callable{
		Name:            syntax.QualifiedName{Namespace: "Demo", Name: "Helper"},
		Kind:            ast.Function,
		Source:          s.URI,
		Signature:       ast.Signature{Parameters: Tuple(Leaf(x)), ReturnType: tInt},
		Location:        loc,
		Specializations: bodySpec(s, loc, Scope(params, s26, s27, s28)),
	}
}

func buildRetry(s *Source) *ast.Callable {
	h := s.Anchor(31)
	s.Frag(31, &fragment.CallableDeclaration{
		Kind:       ast.Operation,
		Name:       h.Sym(31, "Retry"),
		Parameters: Params(h.Param(31, "q", "Qubit")),
		ReturnType: h.Type(31, "Result"),
	})

	q := h.DeclIn(31, "q :", "q", tQubit, false)
	params := []*ast.LocalVariableDeclaration{q}

	// mutable r = Zero;
	a32 := s.Anchor(32)
	r := a32.Decl(32, "r", tResult, true)
	lhs32 := syntax.Leaf(a32.SymIn(32, "r =", "r"))
	rhs32 := a32.Lit(32, "Zero", ast.ResultLiteral, tResult)
	s32 := s.Stmt(32, &ast.VariableDeclaration{Lhs: lhs32, Rhs: rhs32, Mutable: true}, r)
	s.Frag(32, &fragment.VariableBinding{Lhs: lhs32, Rhs: rhs32, Mutable: true})

	withR := Known(params, []*ast.LocalVariableDeclaration{r})

	// repeat {
	s.Frag(33, &fragment.RepeatIntro{})

	a34 := s.Anchor(34)
	attempt := a34.Decl(34, "attempt", tResult, false)
	lhs34 := syntax.Leaf(a34.Sym(34, "attempt"))
	rhs34 := a34.Call(34, "Measure(q)", tResult,
		a34.Global(34, "Measure", "Microsoft.Quantum.Intrinsic.Measure", nil),
		a34.Tuple(34, "(q)", a34.LocalIn(34, "(q)", "q", tQubit)))
	s34 := s.Stmt(34, &ast.VariableDeclaration{Lhs: lhs34, Rhs: rhs34}, attempt)
	s.Frag(34, &fragment.VariableBinding{Lhs: lhs34, Rhs: rhs34})

	a35 := s.Anchor(35)
	upd35 := &fragment.ValueUpdate{Lhs: a35.LocalIn(35, "r =", "r", tResult), Rhs: a35.Local(35, "attempt", tResult)}
	s35 := s.Stmt(35, &ast.ValueUpdate{Lhs: upd35.Lhs, Rhs: upd35.Rhs})
	s.Frag(35, upd35)

	// until r == One fixup {
	a33 := s.Anchor(33)
	until := a33.Binary(37, "r == One", "==", tBool, a33.LocalIn(37, "r ==", "r", tResult), a33.Lit(37, "One", ast.ResultLiteral, tResult))
	a37 := s.Anchor(37)
	untilFrag := a37.Binary(37, "r == One", "==", tBool, a37.LocalIn(37, "r ==", "r", tResult), a37.Lit(37, "One", ast.ResultLiteral, tResult))
	s.Frag(37, &fragment.UntilSuccess{Condition: untilFrag, HasFixup: true})

	a38 := s.Anchor(38)
	fix := a38.Decl(38, "fix", tInt, false)
	lhs38 := syntax.Leaf(a38.Sym(38, "fix"))
	rhs38 := a38.Lit(38, "1", ast.IntLiteral, tInt)
	s38 := s.Stmt(38, &ast.VariableDeclaration{Lhs: lhs38, Rhs: rhs38}, fix)
	s.Frag(38, &fragment.VariableBinding{Lhs: lhs38, Rhs: rhs38})

	a39 := s.Anchor(39)
	call39 := a39.Call(39, "Reset(q)", tUnit,
		a39.Global(39, "Reset", "Microsoft.Quantum.Intrinsic.Reset", nil),
		a39.Tuple(39, "(q)", a39.LocalIn(39, "(q)", "q", tQubit)))
	s39 := s.Stmt(39, &ast.ExpressionStatement{Expr: call39})
	s.Frag(39, &fragment.ExpressionStatement{Expr: call39})

	s33 := s.BlockStmt(33, 40, &ast.RepeatUntil{
		Repeat: ast.Block{Location: s.Loc(33, "", 36), Body: Scope(withR, s34, s35)},
		Until:  until,
		Fixup:  &ast.Block{Location: s.Loc(37, "fixup", 40), Body: Scope(Known(withR, []*ast.LocalVariableDeclaration{attempt}), s38, s39)},
	})

	// within { H(q); } apply { Controlled Prepare(...); }
	s.Frag(41, &fragment.WithinBlockIntro{})

	a42 := s.Anchor(42)
	call42 := a42.Call(42, "H(q)", tUnit,
		a42.Global(42, "H", "Microsoft.Quantum.Intrinsic.H", nil),
		a42.Tuple(42, "(q)", a42.LocalIn(42, "(q)", "q", tQubit)))
	s42 := s.Stmt(42, &ast.ExpressionStatement{Expr: call42})
	s.Frag(42, &fragment.ExpressionStatement{Expr: call42})

	s.FragAt(43, "apply", &fragment.ApplyBlockIntro{})

	a44 := s.Anchor(44)
	prepare := a44.Global(44, "Prepare", "Demo.Prepare", nil)
	callee := a44.Expr(44, "Controlled Prepare", nil, &ast.ControlledApplication{Inner: prepare})
	args := a44.Tuple(44, "([q], (q, (1.0, 2)))",
		a44.Expr(44, "[q]", syntax.ArrayOf(tQubit), &ast.ArrayLiteral{Items: []*ast.Expression{a44.LocalIn(44, "[q]", "q", tQubit)}}),
		a44.Tuple(44, "(q, (1.0, 2))",
			a44.LocalIn(44, "(q,", "q", tQubit),
			a44.Tuple(44, "(1.0, 2)", a44.Lit(44, "1.0", ast.DoubleLiteral, tDouble), a44.LitIn(44, " 2)", "2", ast.IntLiteral, tInt))))
	call44 := a44.Call(44, "Controlled Prepare([q], (q, (1.0, 2)))", tUnit, callee, args)
	s44 := s.Stmt(44, &ast.ExpressionStatement{Expr: call44})
	s.Frag(44, &fragment.ExpressionStatement{Expr: call44})

	s41 := s.BlockStmt(41, 45, &ast.Conjugation{
		Outer: ast.Block{Location: s.Loc(41, "", 43), Body: Scope(withR, s42)},
		Inner: ast.Block{Location: s.Loc(43, "apply", 45), Body: Scope(withR, s44)},
	})

	// return r;
	a46 := s.Anchor(46)
	ret := a46.LocalIn(46, "r;", "r", tResult)
	s46 := s.Stmt(46, &ast.ReturnStatement{Expr: ret})
	s.Frag(46, &fragment.ReturnStatement{Expr: ret})

	loc := callableLocation(s, 31, "Retry")

	return &ast.Callable{
		Name:            syntax.QualifiedName{Namespace: "Demo", Name: "Retry"},
		Kind:            ast.Operation,
		Source:          s.URI,
		Signature:       ast.Signature{Parameters: Tuple(Leaf(q)), ReturnType: tResult},
		Location:        loc,
		Specializations: bodySpec(s, loc, Scope(params, s32, s33, s41, s46)),
	}
}

func buildMath(s *Source) *ast.Namespace {
	s.Frag(0, &fragment.NamespaceDeclaration{Name: s.Anchor(0).NamespaceSym(0, "Demo.Math")})

	complexName := syntax.QualifiedName{Namespace: "Demo.Math", Name: "Complex"}
	complexType := syntax.UserDefined(complexName)

	// function Square(x : Int) : Int
	h6 := s.Anchor(6)
	s.Frag(6, &fragment.CallableDeclaration{
		Kind:       ast.Function,
		Name:       h6.Sym(6, "Square"),
		Parameters: Params(h6.Param(6, "x", "Int")),
		ReturnType: h6.TypeIn(6, ": Int {", "Int"),
	})

	x := h6.DeclIn(6, "x :", "x", tInt, false)

	a7 := s.Anchor(7)
	ret7 := a7.Binary(7, "x * x", "*", tInt, a7.LocalIn(7, "x *", "x", tInt), a7.LocalIn(7, "* x", "x", tInt))
	s.Frag(7, &fragment.ReturnStatement{Expr: ret7})

	squareLoc := callableLocation(s, 6, "Square")
	square := &ast.Callable{
		Name:            syntax.QualifiedName{Namespace: "Demo.Math", Name: "Square"},
		Kind:            ast.Function,
		Source:          s.URI,
		Signature:       ast.Signature{Parameters: Tuple(Leaf(x)), ReturnType: tInt},
		Location:        squareLoc,
		Specializations: bodySpec(s, squareLoc, Scope([]*ast.LocalVariableDeclaration{x}, s.Stmt(7, &ast.ReturnStatement{Expr: ret7}))),
		Documentation: []string{
			"/// # Summary", "/// Squares a number.", "/// # Input", "/// ## x", "/// The value to square.",
		},
	}

	// function Combine(a : Int, b : Int) : Int
	h10 := s.Anchor(10)
	s.Frag(10, &fragment.CallableDeclaration{
		Kind:       ast.Function,
		Name:       h10.Sym(10, "Combine"),
		Parameters: Params(h10.Param(10, "a", "Int"), h10.Param(10, "b", "Int")),
		ReturnType: h10.TypeIn(10, ": Int {", "Int"),
	})

	pa := h10.DeclIn(10, "a :", "a", tInt, false)
	pb := h10.DeclIn(10, "b :", "b", tInt, false)

	a11 := s.Anchor(11)
	ret11 := a11.Binary(11, "a + b", "+", tInt, a11.LocalIn(11, "a +", "a", tInt), a11.LocalIn(11, "+ b", "b", tInt))
	s.Frag(11, &fragment.ReturnStatement{Expr: ret11})

	combineLoc := callableLocation(s, 10, "Combine")
	combine := &ast.Callable{
		Name:            syntax.QualifiedName{Namespace: "Demo.Math", Name: "Combine"},
		Kind:            ast.Function,
		Source:          s.URI,
		Signature:       ast.Signature{Parameters: Tuple(Leaf(pa), Leaf(pb)), ReturnType: tInt},
		Location:        combineLoc,
		Specializations: bodySpec(s, combineLoc, Scope([]*ast.LocalVariableDeclaration{pa, pb}, s.Stmt(11, &ast.ReturnStatement{Expr: ret11}))),
	}

	// newtype Complex = (Re : Double, Im : Double);
	h14 := s.Anchor(14)
	s.Frag(14, &fragment.TypeDefinition{
		Name:  h14.Sym(14, "Complex"),
		Items: Params(h14.Param(14, "Re", "Double"), h14.ParamIn(14, "Im : Double", "Im", "Double")),
	})

	complexDecl := &ast.TypeDecl{
		Name:       complexName,
		Source:     s.URI,
		Location:   callableLocation(s, 14, "Complex"),
		Underlying: syntax.TupleOf(tDouble, tDouble),
		Items: ast.TypeItem{Items: []ast.TypeItem{
			{Name: "Re", Type: tDouble, Range: h14.Range(14, "Re")},
			{Name: "Im", Type: tDouble, Range: h14.Range(14, "Im")},
		}},
		Documentation: []string{"/// A complex number."},
	}

	// function _Scale(c : Complex, k : Double) : Complex
	h16 := s.Anchor(16)
	s.Frag(16, &fragment.CallableDeclaration{
		Kind:       ast.Function,
		Name:       h16.Sym(16, "_Scale"),
		Parameters: Params(h16.Param(16, "c", "Complex"), h16.Param(16, "k", "Double")),
		ReturnType: h16.TypeIn(16, ": Complex {", "Complex"),
	})

	c := h16.DeclIn(16, "c :", "c", complexType, false)
	k := h16.DeclIn(16, "k :", "k", tDouble, false)

	a17 := s.Anchor(17)
	item := func(name string) *ast.Expression {
		access := a17.Expr(17, "c::"+name, tDouble, &ast.NamedItemAccess{
			Expr: a17.LocalIn(17, "c::"+name, "c", complexType),
			Item: a17.SymIn(17, "c::"+name, name),
		})

		return a17.Binary(17, "c::"+name+" * k", "*", tDouble, access, a17.LocalIn(17, "c::"+name+" * k", "k", tDouble))
	}
	ret17 := a17.Call(17, "Complex(c::Re * k, c::Im * k)", complexType,
		a17.Global(17, "Complex", complexName.String(), nil),
		a17.Tuple(17, "(c::Re * k, c::Im * k)", item("Re"), item("Im")))
	s.Frag(17, &fragment.ReturnStatement{Expr: ret17})

	scaleLoc := callableLocation(s, 16, "_Scale")
	scale := &ast.Callable{
		Name:            syntax.QualifiedName{Namespace: "Demo.Math", Name: "_Scale"},
		Kind:            ast.Function,
		Source:          s.URI,
		Signature:       ast.Signature{Parameters: Tuple(Leaf(c), Leaf(k)), ReturnType: complexType},
		Location:        scaleLoc,
		Specializations: bodySpec(s, scaleLoc, Scope([]*ast.LocalVariableDeclaration{c, k}, s.Stmt(17, &ast.ReturnStatement{Expr: ret17}))),
	}

	return &ast.Namespace{
		Name:      "Demo.Math",
		Callables: []*ast.Callable{square, combine, scale},
		Types:     []*ast.TypeDecl{complexDecl},
	}
}

func libraryParam(name string, typ *syntax.Type) ast.ParamTuple {
	return ast.ParamTuple{Decl: &ast.LocalVariableDeclaration{Name: name, Type: typ}}
}

func libraryOperation(ns, name string, params ast.ParamTuple, ret *syntax.Type, access ast.Access, doc ...string) *ast.Callable {
	return &ast.Callable{
		Name:          syntax.QualifiedName{Namespace: ns, Name: name},
		Kind:          ast.Operation,
		Signature:     ast.Signature{Parameters: params, ReturnType: ret, Functors: []syntax.Functor{syntax.Adjoint, syntax.Controlled}},
		Access:        access,
		Library:       true,
		Documentation: doc,
	}
}

func intrinsicNamespace() *ast.Namespace {
	const ns = "Microsoft.Quantum.Intrinsic"

	return &ast.Namespace{
		Name: ns,
		Callables: []*ast.Callable{
			libraryOperation(ns, "H", Tuple(libraryParam("qubit", tQubit)), tUnit, ast.Public,
				"/// # Summary", "/// Applies the Hadamard transformation to a single qubit.",
				"/// # Input", "/// ## qubit", "/// Qubit to which the gate should be applied."),
			libraryOperation(ns, "X", Tuple(libraryParam("qubit", tQubit)), tUnit, ast.Public),
			libraryOperation(ns, "Rx", Tuple(libraryParam("theta", tDouble), libraryParam("qubit", tQubit)), tUnit, ast.Public,
				"/// # Summary", "/// Applies a rotation about the x-axis by a given angle."),
			libraryOperation(ns, "Measure", Tuple(libraryParam("qubit", tQubit)), tResult, ast.Public),
			libraryOperation(ns, "Reset", Tuple(libraryParam("qubit", tQubit)), tUnit, ast.Public),
			libraryOperation(ns, "Secret", Tuple(), tUnit, ast.Internal),
		},
	}
}

func canonNamespace() *ast.Namespace {
	const ns = "Microsoft.Quantum.Canon"

	return &ast.Namespace{
		Name: ns,
		Callables: []*ast.Callable{
			libraryOperation(ns, "ApplyToEach", Tuple(
				libraryParam("singleElementOperation", syntax.OperationOf(tQubit, tUnit)),
				libraryParam("register", syntax.ArrayOf(tQubit)),
			), tUnit, ast.Public),
		},
		Types: []*ast.TypeDecl{{
			Name:       syntax.QualifiedName{Namespace: ns, Name: "Register"},
			Underlying: syntax.ArrayOf(tQubit),
			Items:      ast.TypeItem{Items: []ast.TypeItem{{Name: "Qubits", Type: syntax.ArrayOf(tQubit)}}},
			Library:    true,
		}},
	}
}
