// Package lf is the canonical, version-independent package model.
//
// Values are built once by the builder and are immutable afterwards. Cross
// package and cross module references are plain qualified names; they are
// resolved through the index rather than through pointers, so cyclic module
// graphs need no special handling.
package lf

import (
	"strings"

	"xdao.co/lfpkg/lfversion"
)

// Package is a decoded package.
type Package struct {
	// ID is the hex sha2-256 of Payload.
	ID string
	// Name and Version come from package metadata (1.8+) and are empty
	// otherwise.
	Name            string
	Version         string
	LanguageVersion lfversion.Version
	Modules         []*Module
	// Payload is the exact byte sequence the ID was computed over. Read only.
	Payload []byte
}

// Module returns the module at path, or nil.
func (p *Package) Module(path ...string) *Module {
	for _, m := range p.Modules {
		if equalPath(m.Path, path) {
			return m
		}
	}
	return nil
}

// FeatureFlags are per-module compiler flags.
type FeatureFlags struct {
	ForbidPartyLiterals             bool
	DontDivulgeContractIDsInCreate  bool
	DontDiscloseNonConsumingChoices bool
}

type Module struct {
	Path       []string
	Flags      FeatureFlags
	DataTypes  []*DataType
	Templates  []*Template
	Values     []*Value
	Synonyms   []*Synonym
	Exceptions []*Exception
}

// Name returns the dotted module name.
func (m *Module) Name() string { return strings.Join(m.Path, ".") }

func (m *Module) DataType(name string) *DataType {
	for _, d := range m.DataTypes {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func (m *Module) Template(name string) *Template {
	for _, t := range m.Templates {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// DataTypeKind is the constructor form of a data type.
type DataTypeKind int

const (
	Record DataTypeKind = iota + 1
	Variant
	Enum
)

func (k DataTypeKind) String() string {
	switch k {
	case Record:
		return "record"
	case Variant:
		return "variant"
	case Enum:
		return "enum"
	default:
		return "unknown"
	}
}

// DataType is a record, variant or enum definition. Name is the dotted local
// name within its module.
type DataType struct {
	Name   string
	Params []TypeParam
	Kind   DataTypeKind
	// Fields holds record fields or variant constructors.
	Fields []Field
	// Constructors holds enum constructors.
	Constructors []string
	Serializable bool
}

// Field returns the record field or variant constructor named name.
func (d *DataType) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

type Field struct {
	Name string
	Type *Type
}

type TypeParam struct {
	Name string
	Kind *Kind
}

// Expr is an uninterpreted expression placeholder.
type Expr []byte

type Template struct {
	Name        string
	Param       string
	Precond     Expr
	Signatories Expr
	Observers   Expr
	Agreement   Expr
	Key         *Key
	Choices     []*Choice
}

// Choice returns the choice named name, or nil.
func (t *Template) Choice(name string) *Choice {
	for _, c := range t.Choices {
		if c.Name == name {
			return c
		}
	}
	return nil
}

type Choice struct {
	Name        string
	Consuming   bool
	Controllers Expr
	// Observers is nil when the choice declares none.
	Observers  Expr
	ArgName    string
	ArgType    *Type
	ReturnType *Type
	SelfBinder string
	Update     Expr
}

// Key is a contract key declaration.
type Key struct {
	Type        *Type
	Body        Expr
	Complex     bool
	Maintainers Expr
}

type Value struct {
	Name            string
	Type            *Type
	Body            Expr
	NoPartyLiterals bool
	IsTest          bool
}

type Synonym struct {
	Name   string
	Params []TypeParam
	Type   *Type
}

type Exception struct {
	Name    string
	Message Expr
}

func equalPath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
