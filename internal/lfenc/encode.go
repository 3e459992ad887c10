// Package lfenc encodes raw package trees into payload bytes. It is the
// inverse of the decoder and exists to build fixtures for tests and the
// fixture generator.
package lfenc

import (
	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/lfpkg/lfversion"
	"xdao.co/lfpkg/lfwire"
	"xdao.co/lfpkg/raw"
)

// Payload wraps an encoded package body in an ArchivePayload for v.
func Payload(v lfversion.Version, body []byte) []byte {
	minor := v.String()[len("1."):]
	var b []byte
	b = protowire.AppendTag(b, lfwire.PayloadLF1, protowire.BytesType)
	b = protowire.AppendBytes(b, body)
	b = protowire.AppendTag(b, lfwire.PayloadMinor, protowire.BytesType)
	b = protowire.AppendString(b, minor)
	return b
}

// Build prepares p for v (interning names where v requires it) and returns
// the complete payload. p is modified in place.
func Build(v lfversion.Version, p *raw.Package) []byte {
	Prepare(v, p)
	return Payload(v, Encode(p))
}

type enc struct{ b []byte }

func msg(fn func(e *enc)) []byte {
	e := &enc{}
	fn(e)
	return e.b
}

func (e *enc) bytes(n protowire.Number, b []byte) {
	e.b = protowire.AppendTag(e.b, n, protowire.BytesType)
	e.b = protowire.AppendBytes(e.b, b)
}

func (e *enc) sub(n protowire.Number, fn func(e *enc)) { e.bytes(n, msg(fn)) }

func (e *enc) text(n protowire.Number, s string) {
	e.b = protowire.AppendTag(e.b, n, protowire.BytesType)
	e.b = protowire.AppendString(e.b, s)
}

func (e *enc) varint(n protowire.Number, v uint64) {
	e.b = protowire.AppendTag(e.b, n, protowire.VarintType)
	e.b = protowire.AppendVarint(e.b, v)
}

func (e *enc) num(n protowire.Number, v int64) { e.varint(n, uint64(v)) }

func (e *enc) flag(n protowire.Number, v bool) {
	if v {
		e.varint(n, 1)
	}
}

func (e *enc) str(lit, interned protowire.Number, s raw.Str) {
	if s.Interned {
		e.num(interned, int64(s.Index))
		return
	}
	e.text(lit, s.Value)
}

func (e *enc) dotted(lit, interned protowire.Number, n raw.DottedName) {
	if n.Interned {
		e.num(interned, int64(n.Index))
		return
	}
	e.sub(lit, func(e *enc) {
		for _, s := range n.Segments {
			e.text(lfwire.DottedNameSegments, s)
		}
	})
}

func (e *enc) expr(n protowire.Number, x raw.Expr) {
	if x != nil {
		e.bytes(n, x)
	}
}

// Encode returns the wire form of p's package body.
func Encode(p *raw.Package) []byte {
	return msg(func(e *enc) {
		for _, m := range p.Modules {
			e.sub(lfwire.PackageModules, func(e *enc) { e.module(m) })
		}
		for _, s := range p.Strings {
			e.text(lfwire.PackageInternedStrings, s)
		}
		for _, d := range p.DottedNames {
			e.sub(lfwire.PackageInternedDottedNames, func(e *enc) {
				var packed []byte
				for _, i := range d {
					packed = protowire.AppendVarint(packed, uint64(int64(i)))
				}
				e.bytes(lfwire.InternedDottedNameSegments, packed)
			})
		}
		if p.Metadata != nil {
			e.sub(lfwire.PackageMetadata, func(e *enc) {
				e.str(0, lfwire.MetadataNameInterned, p.Metadata.Name)
				e.str(0, lfwire.MetadataVersionInterned, p.Metadata.Version)
			})
		}
		for _, t := range p.Types {
			e.sub(lfwire.PackageInternedTypes, func(e *enc) { e.typ(t) })
		}
	})
}

func (e *enc) module(m *raw.Module) {
	e.dotted(lfwire.ModuleNameDname, lfwire.ModuleNameInternedDname, m.Name)
	e.sub(lfwire.ModuleFlags, func(e *enc) {
		e.flag(lfwire.FlagsForbidPartyLiterals, m.Flags.ForbidPartyLiterals)
		e.flag(lfwire.FlagsDontDivulgeContractIDs, m.Flags.DontDivulgeContractIDsInCreate)
		e.flag(lfwire.FlagsDontDiscloseNonConsumingToObs, m.Flags.DontDiscloseNonConsumingChoices)
	})
	for _, d := range m.DataTypes {
		e.sub(lfwire.ModuleDataTypes, func(e *enc) { e.dataType(d) })
	}
	for _, v := range m.Values {
		e.sub(lfwire.ModuleValues, func(e *enc) { e.value(v) })
	}
	for _, t := range m.Templates {
		e.sub(lfwire.ModuleTemplates, func(e *enc) { e.template(t) })
	}
	for _, s := range m.Synonyms {
		e.sub(lfwire.ModuleSynonyms, func(e *enc) {
			e.dotted(0, lfwire.SynonymNameInternedDname, s.Name)
			for _, p := range s.Params {
				e.sub(lfwire.SynonymParams, func(e *enc) { e.typeVar(p) })
			}
			e.sub(lfwire.SynonymType, func(e *enc) { e.typ(s.Type) })
		})
	}
	for _, x := range m.Exceptions {
		e.sub(lfwire.ModuleExceptions, func(e *enc) {
			e.dotted(0, lfwire.ExceptionNameInternedDname, x.Name)
			e.expr(lfwire.ExceptionMessage, x.Message)
		})
	}
}

func (e *enc) dataType(d *raw.DataType) {
	e.dotted(lfwire.DataTypeNameDname, lfwire.DataTypeNameInternedDname, d.Name)
	for _, p := range d.Params {
		e.sub(lfwire.DataTypeParams, func(e *enc) { e.typeVar(p) })
	}
	fields := func(e *enc) {
		for _, f := range d.Fields {
			e.sub(lfwire.FieldsFields, func(e *enc) { e.field(f) })
		}
	}
	switch d.Kind {
	case raw.DataRecord:
		e.sub(lfwire.DataTypeRecord, fields)
	case raw.DataVariant:
		e.sub(lfwire.DataTypeVariant, fields)
	case raw.DataEnum:
		e.sub(lfwire.DataTypeEnum, func(e *enc) {
			for _, c := range d.Constructors {
				e.str(lfwire.EnumConstructorsStr, lfwire.EnumConstructorsInternedStr, c)
			}
		})
	}
	e.flag(lfwire.DataTypeSerializable, d.Serializable)
}

func (e *enc) field(f *raw.Field) {
	e.str(lfwire.FieldNameStr, lfwire.FieldNameInternedStr, f.Name)
	e.sub(lfwire.FieldType, func(e *enc) { e.typ(f.Type) })
}

func (e *enc) typeVar(v *raw.TypeVar) {
	e.str(lfwire.TypeVarNameStr, lfwire.TypeVarNameInternedStr, v.Name)
	e.sub(lfwire.TypeVarKind, func(e *enc) { e.kind(v.Kind) })
}

func (e *enc) kind(k *raw.Kind) {
	switch k.Tag {
	case raw.KindStar:
		e.bytes(lfwire.KindStar, nil)
	case raw.KindNat:
		e.bytes(lfwire.KindNat, nil)
	case raw.KindArrow:
		e.sub(lfwire.KindArrow, func(e *enc) {
			for _, p := range k.Params {
				e.sub(lfwire.KindArrowParams, func(e *enc) { e.kind(p) })
			}
			e.sub(lfwire.KindArrowResult, func(e *enc) { e.kind(k.Result) })
		})
	}
}

func (e *enc) args(n protowire.Number, ts []*raw.Type) {
	for _, t := range ts {
		e.sub(n, func(e *enc) { e.typ(t) })
	}
}

// typ writes nothing for a nil type, leaving an empty Type message.
func (e *enc) typ(t *raw.Type) {
	if t == nil {
		return
	}
	switch t.Tag {
	case raw.TypeVarApp:
		e.sub(lfwire.TypeVar, func(e *enc) {
			e.str(lfwire.VarNameStr, lfwire.VarNameInternedStr, t.Var)
			e.args(lfwire.VarArgs, t.Args)
		})
	case raw.TypeCon:
		e.sub(lfwire.TypeCon, func(e *enc) {
			e.sub(lfwire.ConTycon, func(e *enc) { e.tyCon(t.Con) })
			e.args(lfwire.ConArgs, t.Args)
		})
	case raw.TypeSyn:
		e.sub(lfwire.TypeSyn, func(e *enc) {
			e.sub(lfwire.ConTycon, func(e *enc) { e.tyCon(t.Con) })
			e.args(lfwire.ConArgs, t.Args)
		})
	case raw.TypePrim:
		e.sub(lfwire.TypePrim, func(e *enc) {
			e.num(lfwire.PrimTag, int64(t.Prim))
			e.args(lfwire.PrimArgs, t.Args)
		})
	case raw.TypeFun:
		e.sub(lfwire.TypeFun, func(e *enc) {
			e.args(lfwire.FunParams, t.Params)
			e.sub(lfwire.FunResult, func(e *enc) { e.typ(t.Result) })
		})
	case raw.TypeForall:
		e.sub(lfwire.TypeForall, func(e *enc) {
			for _, v := range t.Vars {
				e.sub(lfwire.ForallVars, func(e *enc) { e.typeVar(v) })
			}
			e.sub(lfwire.ForallBody, func(e *enc) { e.typ(t.Body) })
		})
	case raw.TypeStruct:
		e.sub(lfwire.TypeStruct, func(e *enc) {
			for _, f := range t.Fields {
				e.sub(lfwire.StructFields, func(e *enc) { e.field(f) })
			}
		})
	case raw.TypeNat:
		e.num(lfwire.TypeNat, t.Nat)
	case raw.TypeInterned:
		e.num(lfwire.TypeInterned, int64(t.Interned))
	}
}

func (e *enc) tyCon(n raw.TypeConName) {
	e.sub(lfwire.TyConModule, func(e *enc) {
		e.sub(lfwire.ModuleRefPackage, func(e *enc) {
			switch n.Module.Package.Kind {
			case raw.PackageSelf:
				e.bytes(lfwire.PackageRefSelf, nil)
			case raw.PackageLiteral:
				e.text(lfwire.PackageRefIDStr, n.Module.Package.ID)
			case raw.PackageInterned:
				e.num(lfwire.PackageRefIDInterned, int64(n.Module.Package.Index))
			}
		})
		e.dotted(lfwire.ModuleRefModuleDname, lfwire.ModuleRefModuleInternedDname, n.Module.Module)
	})
	e.dotted(lfwire.TyConNameDname, lfwire.TyConNameInternedDname, n.Name)
}

func (e *enc) template(t *raw.Template) {
	e.dotted(lfwire.TemplateTyconDname, lfwire.TemplateTyconInternedDname, t.Name)
	e.str(lfwire.TemplateParamStr, lfwire.TemplateParamInternedStr, t.Param)
	e.expr(lfwire.TemplatePrecond, t.Precond)
	e.expr(lfwire.TemplateSignatories, t.Signatories)
	e.expr(lfwire.TemplateAgreement, t.Agreement)
	e.expr(lfwire.TemplateObservers, t.Observers)
	for _, c := range t.Choices {
		e.sub(lfwire.TemplateChoices, func(e *enc) { e.choice(c) })
	}
	if t.Key != nil {
		e.sub(lfwire.TemplateKey, func(e *enc) {
			e.sub(lfwire.KeyType, func(e *enc) { e.typ(t.Key.Type) })
			if t.Key.Complex {
				e.expr(lfwire.KeyComplex, t.Key.Body)
			} else {
				e.expr(lfwire.KeyExpr, t.Key.Body)
			}
			e.expr(lfwire.KeyMaintainers, t.Key.Maintainers)
		})
	}
}

func (e *enc) choice(c *raw.Choice) {
	e.str(lfwire.ChoiceNameStr, lfwire.ChoiceNameInternedStr, c.Name)
	e.flag(lfwire.ChoiceConsuming, c.Consuming)
	e.expr(lfwire.ChoiceControllers, c.Controller)
	e.expr(lfwire.ChoiceObservers, c.Observers)
	e.sub(lfwire.ChoiceArgBinder, func(e *enc) {
		e.str(lfwire.BinderNameStr, lfwire.BinderNameInternedStr, c.ArgName)
		e.sub(lfwire.BinderType, func(e *enc) { e.typ(c.ArgType) })
	})
	e.sub(lfwire.ChoiceRetType, func(e *enc) { e.typ(c.ReturnType) })
	e.expr(lfwire.ChoiceUpdate, c.Update)
	e.str(lfwire.ChoiceSelfBinderStr, lfwire.ChoiceSelfBinderInternedStr, c.SelfBinder)
}

func (e *enc) value(v *raw.Value) {
	e.sub(lfwire.ValueNameWithType, func(e *enc) {
		if v.Name.Interned {
			e.num(lfwire.NameWithTypeNameInternedDname, int64(v.Name.Index))
		} else {
			for _, s := range v.Name.Segments {
				e.text(lfwire.NameWithTypeNameDname, s)
			}
		}
		e.sub(lfwire.NameWithTypeType, func(e *enc) { e.typ(v.Type) })
	})
	e.expr(lfwire.ValueExpr, v.Body)
	e.flag(lfwire.ValueNoPartyLiterals, v.NoPartyLiterals)
	e.flag(lfwire.ValueIsTest, v.IsTest)
}
