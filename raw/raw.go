// Package raw is the common post-decode tree shape shared by every decode
// family.
//
// Names are either by-value literals or by-reference indices into a package's
// intern tables. The decoder produces both forms; the interning resolver
// replaces every reference with its value so that the builder only ever sees
// literals.
package raw

import "xdao.co/lfpkg/lfversion"

// Str is a possibly interned name.
type Str struct {
	Value    string
	Index    int32
	Interned bool
}

// Lit returns a literal name.
func Lit(s string) Str { return Str{Value: s} }

// InternedStr returns a by-reference name.
func InternedStr(i int32) Str { return Str{Index: i, Interned: true} }

// DottedName is a possibly interned dotted name.
type DottedName struct {
	Segments []string
	Index    int32
	Interned bool
}

// LitDotted returns a literal dotted name.
func LitDotted(segments ...string) DottedName { return DottedName{Segments: segments} }

// InternedDotted returns a by-reference dotted name.
func InternedDotted(i int32) DottedName { return DottedName{Index: i, Interned: true} }

// PackageRefKind distinguishes the three package reference forms.
type PackageRefKind int

const (
	PackageSelf PackageRefKind = iota
	PackageLiteral
	PackageInterned
)

// PackageRef names the package a reference points into.
type PackageRef struct {
	Kind  PackageRefKind
	ID    string
	Index int32
}

// Package is the decoded package body.
type Package struct {
	Version lfversion.Version

	Strings     []string
	DottedNames [][]int32
	Types       []*Type

	Modules []*Module

	// Metadata is nil below 1.8.
	Metadata *Metadata

	// Resolved is set once every by-reference name has been replaced.
	Resolved bool
}

type Metadata struct {
	Name    Str
	Version Str
}

type FeatureFlags struct {
	ForbidPartyLiterals             bool
	DontDivulgeContractIDsInCreate  bool
	DontDiscloseNonConsumingChoices bool
}

type Module struct {
	Name       DottedName
	Flags      FeatureFlags
	DataTypes  []*DataType
	Values     []*Value
	Templates  []*Template
	Synonyms   []*Synonym
	Exceptions []*Exception
}

// DataTypeKind selects the constructor form of a data type.
type DataTypeKind int

const (
	DataRecord DataTypeKind = iota + 1
	DataVariant
	DataEnum
)

type DataType struct {
	Name         DottedName
	Params       []*TypeVar
	Kind         DataTypeKind
	Fields       []*Field
	Constructors []Str
	Serializable bool
}

// Field is a record field or a variant constructor.
type Field struct {
	Name Str
	Type *Type
}

type TypeVar struct {
	Name Str
	Kind *Kind
}

// KindTag distinguishes kinds.
type KindTag int

const (
	KindStar KindTag = iota + 1
	KindArrow
	KindNat
)

type Kind struct {
	Tag    KindTag
	Params []*Kind
	Result *Kind
}

// TypeTag distinguishes the Type sum.
type TypeTag int

const (
	TypeVarApp TypeTag = iota + 1
	TypeCon
	TypePrim
	TypeFun
	TypeForall
	TypeStruct
	TypeNat
	TypeSyn
	// TypeInterned is a reference into Package.Types and never survives
	// resolution.
	TypeInterned
)

// Type is the raw type sum. Which fields are meaningful depends on Tag.
type Type struct {
	Tag TypeTag

	Var  Str         // TypeVarApp
	Con  TypeConName // TypeCon, TypeSyn
	Prim int32       // TypePrim, a wire tag
	Args []*Type     // TypeVarApp, TypeCon, TypePrim, TypeSyn

	Params []*Type // TypeFun
	Result *Type   // TypeFun

	Vars []*TypeVar // TypeForall
	Body *Type      // TypeForall

	Fields []*Field // TypeStruct

	Nat int64 // TypeNat

	Interned int32 // TypeInterned
}

type ModuleRef struct {
	Package PackageRef
	Module  DottedName
}

// TypeConName is a qualified reference to a data type or synonym.
type TypeConName struct {
	Module ModuleRef
	Name   DottedName
}

// Expr is an opaque expression placeholder. Its bytes are shallowly framed
// but never interpreted.
type Expr []byte

type Template struct {
	Name        DottedName
	Param       Str
	Precond     Expr
	Signatories Expr
	Agreement   Expr
	Observers   Expr
	Choices     []*Choice
	Key         *Key
}

type Choice struct {
	Name       Str
	Consuming  bool
	Controller Expr
	Observers  Expr
	ArgName    Str
	ArgType    *Type
	ReturnType *Type
	SelfBinder Str
	Update     Expr
}

type Key struct {
	Type        *Type
	Body        Expr
	Complex     bool
	Maintainers Expr
}

type Value struct {
	Name            DottedName
	Type            *Type
	Body            Expr
	NoPartyLiterals bool
	IsTest          bool
}

type Synonym struct {
	Name   DottedName
	Params []*TypeVar
	Type   *Type
}

type Exception struct {
	Name    DottedName
	Message Expr
}
