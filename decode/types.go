package decode

import (
	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/lfversion"
	"xdao.co/lfpkg/lfwire"
	"xdao.co/lfpkg/raw"
)

// primGates lists the feature each gated primitive tag requires. Tags absent
// from both primGates and ungatedPrims are out of range.
var primGates = map[int32]lfversion.Feature{
	lfwire.PrimDecimal:      lfversion.Decimal,
	lfwire.PrimOptional:     lfversion.Optional,
	lfwire.PrimArrow:        lfversion.ArrowType,
	lfwire.PrimTextMap:      lfversion.TextMap,
	lfwire.PrimNumeric:      lfversion.Numeric,
	lfwire.PrimAny:          lfversion.AnyType,
	lfwire.PrimTypeRep:      lfversion.TypeRep,
	lfwire.PrimGenMap:       lfversion.GenMap,
	lfwire.PrimBigNumeric:   lfversion.BigNumeric,
	lfwire.PrimRoundingMode: lfversion.BigNumeric,
	lfwire.PrimAnyException: lfversion.Exceptions,
}

var ungatedPrims = map[int32]bool{
	lfwire.PrimUnit:       true,
	lfwire.PrimBool:       true,
	lfwire.PrimInt64:      true,
	lfwire.PrimText:       true,
	lfwire.PrimTimestamp:  true,
	lfwire.PrimParty:      true,
	lfwire.PrimList:       true,
	lfwire.PrimUpdate:     true,
	lfwire.PrimScenario:   true,
	lfwire.PrimDate:       true,
	lfwire.PrimContractID: true,
}

func (d *decoder) prim(ctx string, tag int32) error {
	if ungatedPrims[tag] {
		return nil
	}
	feat, ok := primGates[tag]
	if !ok {
		return lferr.Malformed(ctx, "primitive type tag %d out of range", tag)
	}
	return d.gate(ctx, feat)
}

func (d *decoder) types(ctx string, f lfwire.Field, dst []*raw.Type) ([]*raw.Type, error) {
	t, err := sub(ctx, f, d.typ)
	return append(dst, t), err
}

func (d *decoder) typ(b []byte) (*raw.Type, error) {
	const ctx = "Type"
	if err := d.enter(ctx); err != nil {
		return nil, err
	}
	defer d.leave()

	var t *raw.Type
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.TypeVar:
			t, err = sub(ctx, f, d.typeVarApp)
		case lfwire.TypeCon:
			t, err = sub(ctx, f, d.typeConApp)
		case lfwire.TypePrim:
			t, err = sub(ctx, f, d.primApp)
		case lfwire.TypeFun:
			t, err = sub(ctx, f, d.fun)
		case lfwire.TypeForall:
			t, err = sub(ctx, f, d.forall)
		case lfwire.TypeStruct:
			t, err = sub(ctx, f, d.structType)
		case lfwire.TypeNat:
			if err := d.gate(ctx, lfversion.Numeric); err != nil {
				return err
			}
			var n int64
			n, err = f.Int64(ctx)
			t = &raw.Type{Tag: raw.TypeNat, Nat: n}
		case lfwire.TypeSyn:
			if err := d.gate(ctx, lfversion.TypeSynonyms); err != nil {
				return err
			}
			t, err = sub(ctx, f, d.synApp)
		case lfwire.TypeInterned:
			if err := d.gate(ctx, lfversion.InternedTypes); err != nil {
				return err
			}
			var i int32
			i, err = f.Int32(ctx)
			t = &raw.Type{Tag: raw.TypeInterned, Interned: i}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, missing(ctx, "type sum")
	}
	return t, nil
}

func (d *decoder) typeVarApp(b []byte) (*raw.Type, error) {
	const ctx = "Type.Var"
	t := &raw.Type{Tag: raw.TypeVarApp}
	var named bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.VarNameStr:
			t.Var, err = d.litStr(ctx, f)
			named = true
		case lfwire.VarNameInternedStr:
			t.Var, err = d.internedStr(ctx, f)
			named = true
		case lfwire.VarArgs:
			t.Args, err = d.types(ctx, f, t.Args)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !named {
		return nil, missing(ctx, "var")
	}
	return t, nil
}

func (d *decoder) typeConApp(b []byte) (*raw.Type, error) {
	const ctx = "Type.Con"
	t := &raw.Type{Tag: raw.TypeCon}
	var haveCon bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.ConTycon:
			t.Con, err = sub(ctx, f, d.tyConName)
			haveCon = true
		case lfwire.ConArgs:
			t.Args, err = d.types(ctx, f, t.Args)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !haveCon {
		return nil, missing(ctx, "tycon")
	}
	return t, nil
}

func (d *decoder) synApp(b []byte) (*raw.Type, error) {
	const ctx = "Type.Syn"
	t := &raw.Type{Tag: raw.TypeSyn}
	var haveSyn bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.ConTycon:
			t.Con, err = sub(ctx, f, d.tyConName)
			haveSyn = true
		case lfwire.ConArgs:
			t.Args, err = d.types(ctx, f, t.Args)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !haveSyn {
		return nil, missing(ctx, "tysyn")
	}
	return t, nil
}

func (d *decoder) primApp(b []byte) (*raw.Type, error) {
	const ctx = "Type.Prim"
	t := &raw.Type{Tag: raw.TypePrim}
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.PrimTag:
			t.Prim, err = f.Int32(ctx)
		case lfwire.PrimArgs:
			t.Args, err = d.types(ctx, f, t.Args)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := d.prim(ctx, t.Prim); err != nil {
		return nil, err
	}
	if t.Prim == lfwire.PrimDecimal && len(t.Args) > 0 {
		return nil, lferr.Malformed(ctx, "DECIMAL applied to %d arguments", len(t.Args))
	}
	return t, nil
}

func (d *decoder) fun(b []byte) (*raw.Type, error) {
	const ctx = "Type.Fun"
	t := &raw.Type{Tag: raw.TypeFun}
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.FunParams:
			t.Params, err = d.types(ctx, f, t.Params)
		case lfwire.FunResult:
			t.Result, err = sub(ctx, f, d.typ)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(t.Params) == 0 {
		return nil, missing(ctx, "params")
	}
	if t.Result == nil {
		return nil, missing(ctx, "result")
	}
	return t, nil
}

func (d *decoder) forall(b []byte) (*raw.Type, error) {
	const ctx = "Type.Forall"
	t := &raw.Type{Tag: raw.TypeForall}
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.ForallVars:
			var tv *raw.TypeVar
			tv, err = sub(ctx, f, d.typeVar)
			t.Vars = append(t.Vars, tv)
		case lfwire.ForallBody:
			t.Body, err = sub(ctx, f, d.typ)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(t.Vars) == 0 {
		return nil, missing(ctx, "vars")
	}
	if t.Body == nil {
		return nil, missing(ctx, "body")
	}
	return t, nil
}

func (d *decoder) structType(b []byte) (*raw.Type, error) {
	const ctx = "Type.Struct"
	t := &raw.Type{Tag: raw.TypeStruct}
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		if f.Num != lfwire.StructFields {
			return nil
		}
		fw, err := sub(ctx, f, d.field)
		t.Fields = append(t.Fields, fw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (d *decoder) field(b []byte) (*raw.Field, error) {
	const ctx = "FieldWithType"
	fw := &raw.Field{}
	var named bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.FieldNameStr:
			fw.Name, err = d.litStr(ctx, f)
			named = true
		case lfwire.FieldNameInternedStr:
			fw.Name, err = d.internedStr(ctx, f)
			named = true
		case lfwire.FieldType:
			fw.Type, err = sub(ctx, f, d.typ)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !named {
		return nil, missing(ctx, "field")
	}
	if fw.Type == nil {
		return nil, missing(ctx, "type")
	}
	return fw, nil
}

func (d *decoder) typeVar(b []byte) (*raw.TypeVar, error) {
	const ctx = "TypeVarWithKind"
	tv := &raw.TypeVar{}
	var named bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.TypeVarNameStr:
			tv.Name, err = d.litStr(ctx, f)
			named = true
		case lfwire.TypeVarNameInternedStr:
			tv.Name, err = d.internedStr(ctx, f)
			named = true
		case lfwire.TypeVarKind:
			tv.Kind, err = sub(ctx, f, d.kind)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !named {
		return nil, missing(ctx, "var")
	}
	if tv.Kind == nil {
		return nil, missing(ctx, "kind")
	}
	return tv, nil
}

func (d *decoder) kind(b []byte) (*raw.Kind, error) {
	const ctx = "Kind"
	if err := d.enter(ctx); err != nil {
		return nil, err
	}
	defer d.leave()

	var k *raw.Kind
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.KindStar:
			_, err = f.Message(ctx)
			k = &raw.Kind{Tag: raw.KindStar}
		case lfwire.KindNat:
			if err := d.gate(ctx, lfversion.Numeric); err != nil {
				return err
			}
			_, err = f.Message(ctx)
			k = &raw.Kind{Tag: raw.KindNat}
		case lfwire.KindArrow:
			k, err = sub(ctx, f, d.kindArrow)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, missing(ctx, "kind sum")
	}
	return k, nil
}

func (d *decoder) kindArrow(b []byte) (*raw.Kind, error) {
	const ctx = "Kind.Arrow"
	k := &raw.Kind{Tag: raw.KindArrow}
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.KindArrowParams:
			var p *raw.Kind
			p, err = sub(ctx, f, d.kind)
			k.Params = append(k.Params, p)
		case lfwire.KindArrowResult:
			k.Result, err = sub(ctx, f, d.kind)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(k.Params) == 0 {
		return nil, missing(ctx, "params")
	}
	if k.Result == nil {
		return nil, missing(ctx, "result")
	}
	return k, nil
}

func (d *decoder) tyConName(b []byte) (raw.TypeConName, error) {
	const ctx = "TypeConName"
	var (
		n                 raw.TypeConName
		haveMod, haveName bool
	)
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.TyConModule:
			n.Module, err = sub(ctx, f, d.moduleRef)
			haveMod = true
		case lfwire.TyConNameDname:
			n.Name, err = d.litDotted(ctx, f)
			haveName = true
		case lfwire.TyConNameInternedDname:
			n.Name, err = d.internedDotted(ctx, f)
			haveName = true
		}
		return err
	})
	if err != nil {
		return raw.TypeConName{}, err
	}
	if !haveMod {
		return raw.TypeConName{}, missing(ctx, "module")
	}
	if !haveName {
		return raw.TypeConName{}, missing(ctx, "name")
	}
	return n, nil
}

func (d *decoder) moduleRef(b []byte) (raw.ModuleRef, error) {
	const ctx = "ModuleRef"
	var (
		r                raw.ModuleRef
		havePkg, haveMod bool
	)
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.ModuleRefPackage:
			r.Package, err = sub(ctx, f, d.packageRef)
			havePkg = true
		case lfwire.ModuleRefModuleDname:
			r.Module, err = d.litDotted(ctx, f)
			haveMod = true
		case lfwire.ModuleRefModuleInternedDname:
			r.Module, err = d.internedDotted(ctx, f)
			haveMod = true
		}
		return err
	})
	if err != nil {
		return raw.ModuleRef{}, err
	}
	if !havePkg {
		return raw.ModuleRef{}, missing(ctx, "package_ref")
	}
	if !haveMod {
		return raw.ModuleRef{}, missing(ctx, "module_name")
	}
	return r, nil
}

func (d *decoder) packageRef(b []byte) (raw.PackageRef, error) {
	const ctx = "PackageRef"
	var (
		r    raw.PackageRef
		have bool
	)
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		switch f.Num {
		case lfwire.PackageRefSelf:
			if _, err := f.Message(ctx); err != nil {
				return err
			}
			r, have = raw.PackageRef{Kind: raw.PackageSelf}, true
		case lfwire.PackageRefIDStr:
			if !d.names.literalPackageIDs {
				return lferr.Malformed(ctx, "literal package id in version %s", d.version)
			}
			id, err := f.Text(ctx)
			if err != nil {
				return err
			}
			if id == "" {
				return missing(ctx, "package id")
			}
			r, have = raw.PackageRef{Kind: raw.PackageLiteral, ID: id}, true
		case lfwire.PackageRefIDInterned:
			if !d.names.internedPackageIDs {
				return lferr.Malformed(ctx, "interned package id in version %s", d.version)
			}
			i, err := f.Int32(ctx)
			if err != nil {
				return err
			}
			r, have = raw.PackageRef{Kind: raw.PackageInterned, Index: i}, true
		}
		return nil
	})
	if err != nil {
		return raw.PackageRef{}, err
	}
	if !have {
		return raw.PackageRef{}, missing(ctx, "package reference sum")
	}
	return r, nil
}
