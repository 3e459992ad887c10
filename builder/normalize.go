package builder

import (
	"xdao.co/lfpkg/lf"
	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/lfversion"
	"xdao.co/lfpkg/lfwire"
	"xdao.co/lfpkg/raw"
)

// decimalScale is the fixed scale of the legacy DECIMAL type.
const decimalScale = 10

type primRule func(args []*lf.Type) (*lf.Type, error)

func prim(k lf.PrimKind) primRule {
	return func(args []*lf.Type) (*lf.Type, error) {
		return lf.PrimType(k, args...), nil
	}
}

func decimal(args []*lf.Type) (*lf.Type, error) {
	if len(args) != 0 {
		return nil, lferr.UnsupportedConstruct("DECIMAL", "applied to %d arguments", len(args))
	}
	return lf.NumericType(decimalScale), nil
}

// normalization is the complete mapping from one family's primitive tags to
// canonical types. A tag missing from the table has no canonical form in
// that family.
type normalization struct {
	prims map[int32]primRule
}

var literalPrims = map[int32]primRule{
	lfwire.PrimUnit:       prim(lf.Unit),
	lfwire.PrimBool:       prim(lf.Bool),
	lfwire.PrimInt64:      prim(lf.Int64),
	lfwire.PrimDecimal:    decimal,
	lfwire.PrimText:       prim(lf.Text),
	lfwire.PrimTimestamp:  prim(lf.Timestamp),
	lfwire.PrimParty:      prim(lf.Party),
	lfwire.PrimList:       prim(lf.List),
	lfwire.PrimUpdate:     prim(lf.Update),
	lfwire.PrimScenario:   prim(lf.Scenario),
	lfwire.PrimDate:       prim(lf.Date),
	lfwire.PrimContractID: prim(lf.ContractID),
	lfwire.PrimOptional:   prim(lf.Optional),
	lfwire.PrimArrow:      prim(lf.Arrow),
	lfwire.PrimTextMap:    prim(lf.TextMap),
}

// 1.6 adds no primitive types.
var internedIDPrims = literalPrims

var internedPrims = map[int32]primRule{
	lfwire.PrimUnit:         prim(lf.Unit),
	lfwire.PrimBool:         prim(lf.Bool),
	lfwire.PrimInt64:        prim(lf.Int64),
	lfwire.PrimText:         prim(lf.Text),
	lfwire.PrimTimestamp:    prim(lf.Timestamp),
	lfwire.PrimParty:        prim(lf.Party),
	lfwire.PrimList:         prim(lf.List),
	lfwire.PrimUpdate:       prim(lf.Update),
	lfwire.PrimScenario:     prim(lf.Scenario),
	lfwire.PrimDate:         prim(lf.Date),
	lfwire.PrimContractID:   prim(lf.ContractID),
	lfwire.PrimOptional:     prim(lf.Optional),
	lfwire.PrimArrow:        prim(lf.Arrow),
	lfwire.PrimTextMap:      prim(lf.TextMap),
	lfwire.PrimNumeric:      prim(lf.Numeric),
	lfwire.PrimAny:          prim(lf.Any),
	lfwire.PrimTypeRep:      prim(lf.TypeRep),
	lfwire.PrimGenMap:       prim(lf.GenMap),
	lfwire.PrimBigNumeric:   prim(lf.BigNumeric),
	lfwire.PrimRoundingMode: prim(lf.RoundingMode),
	lfwire.PrimAnyException: prim(lf.AnyException),
}

var normalizations = map[lfversion.Family]*normalization{
	lfversion.FamilyLiteral:     {prims: literalPrims},
	lfversion.FamilyInternedIDs: {prims: internedIDPrims},
	lfversion.FamilyInterned:    {prims: internedPrims},
}

func (n *normalization) prim(tag int32, args []*lf.Type) (*lf.Type, error) {
	rule, ok := n.prims[tag]
	if !ok {
		return nil, lferr.UnsupportedConstruct("PrimType", "no canonical form for primitive tag %d", tag)
	}
	return rule(args)
}

// typ memoizes on the raw node: interned types are shared between their
// uses, and rebuilding each use separately is exponential in the worst case.
func (b *builder) typ(t *raw.Type) (*lf.Type, error) {
	if lt, ok := b.memo[t]; ok {
		return lt, nil
	}
	lt, err := b.convert(t)
	if err != nil {
		return nil, err
	}
	b.memo[t] = lt
	return lt, nil
}

func (b *builder) convert(t *raw.Type) (*lf.Type, error) {
	switch t.Tag {
	case raw.TypeVarApp:
		args, err := b.typeList(t.Args)
		if err != nil {
			return nil, err
		}
		return lf.VarType(t.Var.Value, args...), nil
	case raw.TypeCon, raw.TypeSyn:
		args, err := b.typeList(t.Args)
		if err != nil {
			return nil, err
		}
		name, err := b.tyCon(t.Con)
		if err != nil {
			return nil, err
		}
		if t.Tag == raw.TypeSyn {
			return lf.SynType(name, args...), nil
		}
		return lf.ConType(name, args...), nil
	case raw.TypePrim:
		args, err := b.typeList(t.Args)
		if err != nil {
			return nil, err
		}
		return b.norm.prim(t.Prim, args)
	case raw.TypeFun:
		params, err := b.typeList(t.Params)
		if err != nil {
			return nil, err
		}
		res, err := b.typ(t.Result)
		if err != nil {
			return nil, err
		}
		return lf.ArrowType(res, params...), nil
	case raw.TypeForall:
		vars, err := b.typeParams(t.Vars)
		if err != nil {
			return nil, err
		}
		body, err := b.typ(t.Body)
		if err != nil {
			return nil, err
		}
		return &lf.Type{Tag: lf.TForall, Vars: vars, Body: body}, nil
	case raw.TypeStruct:
		fields, err := b.fields(t.Fields)
		if err != nil {
			return nil, err
		}
		if err := unique("struct field", "", fieldNames(fields)); err != nil {
			return nil, err
		}
		return &lf.Type{Tag: lf.TStruct, Fields: fields}, nil
	case raw.TypeNat:
		return lf.NatType(t.Nat), nil
	}
	return nil, lferr.UnsupportedConstruct("Type", "no canonical form for type tag %d", t.Tag)
}

func (b *builder) typeList(ts []*raw.Type) ([]*lf.Type, error) {
	if len(ts) == 0 {
		return nil, nil
	}
	out := make([]*lf.Type, len(ts))
	for i, t := range ts {
		lt, err := b.typ(t)
		if err != nil {
			return nil, err
		}
		out[i] = lt
	}
	return out, nil
}

func (b *builder) kind(k *raw.Kind) (*lf.Kind, error) {
	switch k.Tag {
	case raw.KindStar:
		return &lf.Kind{Tag: lf.KStar}, nil
	case raw.KindNat:
		return &lf.Kind{Tag: lf.KNat}, nil
	case raw.KindArrow:
		out := &lf.Kind{Tag: lf.KArrow, Params: make([]*lf.Kind, len(k.Params))}
		for i, p := range k.Params {
			lp, err := b.kind(p)
			if err != nil {
				return nil, err
			}
			out.Params[i] = lp
		}
		res, err := b.kind(k.Result)
		if err != nil {
			return nil, err
		}
		out.Result = res
		return out, nil
	}
	return nil, lferr.UnsupportedConstruct("Kind", "no canonical form for kind tag %d", k.Tag)
}

func (b *builder) typeParams(vs []*raw.TypeVar) ([]lf.TypeParam, error) {
	if len(vs) == 0 {
		return nil, nil
	}
	out := make([]lf.TypeParam, len(vs))
	for i, v := range vs {
		k, err := b.kind(v.Kind)
		if err != nil {
			return nil, err
		}
		out[i] = lf.TypeParam{Name: v.Name.Value, Kind: k}
	}
	return out, nil
}

func (b *builder) fields(fs []*raw.Field) ([]lf.Field, error) {
	out := make([]lf.Field, len(fs))
	for i, f := range fs {
		t, err := b.typ(f.Type)
		if err != nil {
			return nil, err
		}
		out[i] = lf.Field{Name: f.Name.Value, Type: t}
	}
	return out, nil
}

func (b *builder) tyCon(n raw.TypeConName) (lf.TypeConName, error) {
	out := lf.TypeConName{
		Module: n.Module.Module.Segments,
		Name:   dotted(n.Name),
	}
	switch n.Module.Package.Kind {
	case raw.PackageSelf:
	case raw.PackageLiteral:
		out.PackageID = n.Module.Package.ID
	default:
		return lf.TypeConName{}, lferr.UnsupportedConstruct("PackageRef", "no canonical form for package reference kind %d", n.Module.Package.Kind)
	}
	return out, nil
}
