package lfenc

import (
	"xdao.co/lfpkg/lfwire"
	"xdao.co/lfpkg/raw"
)

// Expr is a minimal, well-framed expression placeholder.
var Expr = raw.Expr{0x08, 0x01}

// Self returns a reference to name in module of the enclosing package.
func Self(module []string, name ...string) raw.TypeConName {
	return raw.TypeConName{
		Module: raw.ModuleRef{Package: raw.PackageRef{Kind: raw.PackageSelf}, Module: raw.LitDotted(module...)},
		Name:   raw.LitDotted(name...),
	}
}

// Ref returns a reference to name in module of package id.
func Ref(id string, module []string, name ...string) raw.TypeConName {
	n := Self(module, name...)
	n.Module.Package = raw.PackageRef{Kind: raw.PackageLiteral, ID: id}
	return n
}

func Con(n raw.TypeConName, args ...*raw.Type) *raw.Type {
	return &raw.Type{Tag: raw.TypeCon, Con: n, Args: args}
}

func Prim(tag int32, args ...*raw.Type) *raw.Type {
	return &raw.Type{Tag: raw.TypePrim, Prim: tag, Args: args}
}

func Var(name string, args ...*raw.Type) *raw.Type {
	return &raw.Type{Tag: raw.TypeVarApp, Var: raw.Lit(name), Args: args}
}

func Field(name string, t *raw.Type) *raw.Field {
	return &raw.Field{Name: raw.Lit(name), Type: t}
}

func Star() *raw.Kind { return &raw.Kind{Tag: raw.KindStar} }

func Record(name string, fields ...*raw.Field) *raw.DataType {
	if fields == nil {
		fields = []*raw.Field{}
	}
	return &raw.DataType{Name: raw.LitDotted(name), Kind: raw.DataRecord, Fields: fields, Serializable: true}
}

func Variant(name string, ctors ...*raw.Field) *raw.DataType {
	return &raw.DataType{Name: raw.LitDotted(name), Kind: raw.DataVariant, Fields: ctors, Serializable: true}
}

func Enum(name string, ctors ...string) *raw.DataType {
	cs := make([]raw.Str, len(ctors))
	for i, c := range ctors {
		cs[i] = raw.Lit(c)
	}
	return &raw.DataType{Name: raw.LitDotted(name), Kind: raw.DataEnum, Constructors: cs, Serializable: true}
}

// Template returns a template over the same-named record with placeholder
// expressions.
func Template(name string, choices ...*raw.Choice) *raw.Template {
	return &raw.Template{
		Name:        raw.LitDotted(name),
		Param:       raw.Lit("this"),
		Precond:     Expr,
		Signatories: Expr,
		Agreement:   Expr,
		Observers:   Expr,
		Choices:     choices,
	}
}

func Choice(name string, consuming bool, argName string, arg, ret *raw.Type) *raw.Choice {
	return &raw.Choice{
		Name:       raw.Lit(name),
		Consuming:  consuming,
		Controller: Expr,
		ArgName:    raw.Lit(argName),
		ArgType:    arg,
		ReturnType: ret,
		SelfBinder: raw.Lit("self"),
		Update:     Expr,
	}
}

func Module(name []string, dataTypes ...*raw.DataType) *raw.Module {
	return &raw.Module{Name: raw.LitDotted(name...), DataTypes: dataTypes}
}

// MinimalRecord is one module Main holding one zero-field record T.
func MinimalRecord() *raw.Package {
	return &raw.Package{Modules: []*raw.Module{Module([]string{"Main"}, Record("T"))}}
}

// FooBarBaz is module Foo with record Bar = {x: Int64} and template Baz
// whose single consuming choice is Do(arg: Bar) -> Unit.
func FooBarBaz() *raw.Package {
	foo := []string{"Foo"}
	m := Module(foo,
		Record("Bar", Field("x", Prim(lfwire.PrimInt64))),
		Record("Baz", Field("owner", Prim(lfwire.PrimParty))),
	)
	m.Templates = []*raw.Template{
		Template("Baz", Choice("Do", true, "arg", Con(Self(foo, "Bar")), Prim(lfwire.PrimUnit))),
	}
	return &raw.Package{Modules: []*raw.Module{m}}
}
