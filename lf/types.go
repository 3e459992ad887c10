package lf

import (
	"strconv"
	"strings"
)

// TypeTag tags the Type sum.
type TypeTag int

const (
	TVar TypeTag = iota + 1
	TCon
	TPrim
	TForall
	TNat
	TSyn
	TStruct
)

// PrimKind is a built-in type. Legacy fixed-point decimals are represented as
// Numeric with scale 10; there is no separate decimal kind.
type PrimKind int

const (
	Unit PrimKind = iota + 1
	Bool
	Int64
	Numeric
	Text
	Timestamp
	Party
	List
	Update
	Scenario
	Date
	ContractID
	Optional
	Arrow
	TextMap
	Any
	TypeRep
	GenMap
	BigNumeric
	RoundingMode
	AnyException
)

var primNames = map[PrimKind]string{
	Unit:         "Unit",
	Bool:         "Bool",
	Int64:        "Int64",
	Numeric:      "Numeric",
	Text:         "Text",
	Timestamp:    "Timestamp",
	Party:        "Party",
	List:         "List",
	Update:       "Update",
	Scenario:     "Scenario",
	Date:         "Date",
	ContractID:   "ContractId",
	Optional:     "Optional",
	Arrow:        "Arrow",
	TextMap:      "TextMap",
	Any:          "Any",
	TypeRep:      "TypeRep",
	GenMap:       "GenMap",
	BigNumeric:   "BigNumeric",
	RoundingMode: "RoundingMode",
	AnyException: "AnyException",
}

func (k PrimKind) String() string {
	if s, ok := primNames[k]; ok {
		return s
	}
	return "Prim(" + strconv.Itoa(int(k)) + ")"
}

// KindTag tags Kind.
type KindTag int

const (
	KStar KindTag = iota + 1
	KArrow
	KNat
)

type Kind struct {
	Tag    KindTag
	Params []*Kind
	Result *Kind
}

func (k *Kind) String() string {
	if k == nil {
		return "?"
	}
	switch k.Tag {
	case KStar:
		return "*"
	case KNat:
		return "nat"
	case KArrow:
		parts := make([]string, 0, len(k.Params)+1)
		for _, p := range k.Params {
			s := p.String()
			if p.Tag == KArrow {
				s = "(" + s + ")"
			}
			parts = append(parts, s)
		}
		parts = append(parts, k.Result.String())
		return strings.Join(parts, " -> ")
	}
	return "?"
}

// TypeConName is a qualified reference to a data type or synonym. An empty
// PackageID refers to the package that contains the reference.
type TypeConName struct {
	PackageID string
	Module    []string
	Name      string
}

// IsSelf reports whether the reference omits its package id.
func (n TypeConName) IsSelf() bool { return n.PackageID == "" }

// QualifiedName returns "Module.Path.Name".
func (n TypeConName) QualifiedName() string {
	if len(n.Module) == 0 {
		return n.Name
	}
	return strings.Join(n.Module, ".") + "." + n.Name
}

// String includes the package id when present.
func (n TypeConName) String() string {
	if n.IsSelf() {
		return n.QualifiedName()
	}
	return n.PackageID + ":" + n.QualifiedName()
}

// Type is the canonical type sum. Which fields are meaningful depends on Tag:
// Var and Args for TVar; Con and Args for TCon and TSyn; Prim and Args for
// TPrim; Vars and Body for TForall; Nat for TNat; Fields for TStruct.
type Type struct {
	Tag    TypeTag
	Var    string
	Con    TypeConName
	Prim   PrimKind
	Args   []*Type
	Vars   []TypeParam
	Body   *Type
	Nat    int64
	Fields []Field
}

func VarType(name string, args ...*Type) *Type {
	return &Type{Tag: TVar, Var: name, Args: args}
}

func ConType(name TypeConName, args ...*Type) *Type {
	return &Type{Tag: TCon, Con: name, Args: args}
}

func SynType(name TypeConName, args ...*Type) *Type {
	return &Type{Tag: TSyn, Con: name, Args: args}
}

func PrimType(k PrimKind, args ...*Type) *Type {
	return &Type{Tag: TPrim, Prim: k, Args: args}
}

func NatType(n int64) *Type { return &Type{Tag: TNat, Nat: n} }

// NumericType returns Numeric with the given scale.
func NumericType(scale int64) *Type { return PrimType(Numeric, NatType(scale)) }

// ArrowType returns params -> ... -> result as right-nested Arrow
// applications.
func ArrowType(result *Type, params ...*Type) *Type {
	t := result
	for i := len(params) - 1; i >= 0; i-- {
		t = PrimType(Arrow, params[i], t)
	}
	return t
}

// ConMapper applies a name rewrite to types. Interned types are shared
// between their uses, so a Type is a DAG; the mapper keeps one result per
// node across every Map call and preserves that sharing.
type ConMapper struct {
	fn   func(TypeConName) TypeConName
	memo map[*Type]*Type
}

func NewConMapper(fn func(TypeConName) TypeConName) *ConMapper {
	return &ConMapper{fn: fn, memo: make(map[*Type]*Type)}
}

// Map returns t with the rewrite applied to every TCon and TSyn name. Nodes
// without changed references are returned as is.
func (m *ConMapper) Map(t *Type) *Type {
	if t == nil {
		return nil
	}
	if out, ok := m.memo[t]; ok {
		return out
	}
	out := m.mapNode(t)
	m.memo[t] = out
	return out
}

func (m *ConMapper) mapNode(t *Type) *Type {
	args, argsChanged := m.mapTypes(t.Args)
	body := m.Map(t.Body)
	var fields []Field
	fieldsChanged := false
	if len(t.Fields) > 0 {
		fields = make([]Field, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Field{Name: f.Name, Type: m.Map(f.Type)}
			if fields[i].Type != f.Type {
				fieldsChanged = true
			}
		}
	}
	con := t.Con
	if t.Tag == TCon || t.Tag == TSyn {
		con = m.fn(t.Con)
	}
	if !argsChanged && body == t.Body && !fieldsChanged && sameCon(con, t.Con) {
		return t
	}
	out := *t
	out.Con = con
	out.Args = args
	out.Body = body
	if fieldsChanged {
		out.Fields = fields
	}
	return &out
}

func (m *ConMapper) mapTypes(ts []*Type) ([]*Type, bool) {
	if len(ts) == 0 {
		return ts, false
	}
	out := make([]*Type, len(ts))
	changed := false
	for i, a := range ts {
		out[i] = m.Map(a)
		if out[i] != a {
			changed = true
		}
	}
	if !changed {
		return ts, false
	}
	return out, true
}

// MapCons is NewConMapper(fn).Map(t).
func (t *Type) MapCons(fn func(TypeConName) TypeConName) *Type {
	return NewConMapper(fn).Map(t)
}

func sameCon(a, b TypeConName) bool {
	return a.PackageID == b.PackageID && a.Name == b.Name && equalPath(a.Module, b.Module)
}

// Cons calls fn for every TCon and TSyn node in t, depth first. A node
// shared by several uses is visited once.
func (t *Type) Cons(fn func(tag TypeTag, name TypeConName) error) error {
	return t.cons(fn, make(map[*Type]bool))
}

func (t *Type) cons(fn func(tag TypeTag, name TypeConName) error, seen map[*Type]bool) error {
	if t == nil || seen[t] {
		return nil
	}
	seen[t] = true
	if t.Tag == TCon || t.Tag == TSyn {
		if err := fn(t.Tag, t.Con); err != nil {
			return err
		}
	}
	for _, a := range t.Args {
		if err := a.cons(fn, seen); err != nil {
			return err
		}
	}
	if err := t.Body.cons(fn, seen); err != nil {
		return err
	}
	for _, f := range t.Fields {
		if err := f.Type.cons(fn, seen); err != nil {
			return err
		}
	}
	return nil
}

// MaxRender bounds the length of String. A type whose rendering would be
// longer is cut and ends in "...".
const MaxRender = 4096

func (t *Type) String() string {
	if t == nil {
		return "?"
	}
	r := renderer{left: MaxRender}
	r.render(t, false)
	if r.cut {
		r.b.WriteString("...")
	}
	return r.b.String()
}

type renderer struct {
	b    strings.Builder
	left int
	cut  bool
}

func (r *renderer) write(s string) {
	if r.cut {
		return
	}
	if len(s) > r.left {
		r.b.WriteString(s[:r.left])
		r.left = 0
		r.cut = true
		return
	}
	r.b.WriteString(s)
	r.left -= len(s)
}

func (r *renderer) render(t *Type, nested bool) {
	if r.cut {
		return
	}
	if t == nil {
		r.write("?")
		return
	}
	switch t.Tag {
	case TNat:
		r.write(strconv.FormatInt(t.Nat, 10))
		return
	case TStruct:
		r.write("<")
		for i, f := range t.Fields {
			if i > 0 {
				r.write(", ")
			}
			r.write(f.Name + ": ")
			r.render(f.Type, false)
		}
		r.write(">")
		return
	case TVar, TCon, TSyn, TPrim, TForall:
	default:
		r.write("?")
		return
	}

	paren := nested && (len(t.Args) > 0 || t.Tag == TForall)
	if paren {
		r.write("(")
	}
	switch t.Tag {
	case TVar:
		r.applied(t.Var, t.Args)
	case TCon, TSyn:
		r.applied(t.Con.QualifiedName(), t.Args)
	case TPrim:
		if t.Prim == Arrow && len(t.Args) == 2 {
			r.render(t.Args[0], true)
			r.write(" -> ")
			r.render(t.Args[1], false)
		} else {
			r.applied(t.Prim.String(), t.Args)
		}
	case TForall:
		vars := make([]string, len(t.Vars))
		for i, v := range t.Vars {
			vars[i] = v.Name
		}
		r.write("forall " + strings.Join(vars, " ") + ". ")
		r.render(t.Body, false)
	}
	if paren {
		r.write(")")
	}
}

func (r *renderer) applied(head string, args []*Type) {
	r.write(head)
	for _, a := range args {
		r.write(" ")
		r.render(a, true)
	}
}
