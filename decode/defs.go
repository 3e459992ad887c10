package decode

import (
	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/lfversion"
	"xdao.co/lfpkg/lfwire"
	"xdao.co/lfpkg/raw"
)

func (d *decoder) module(b []byte) (*raw.Module, error) {
	const ctx = "Module"
	m := &raw.Module{}
	var named bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.ModuleNameDname:
			m.Name, err = d.litDotted(ctx, f)
			named = true
		case lfwire.ModuleNameInternedDname:
			m.Name, err = d.internedDotted(ctx, f)
			named = true
		case lfwire.ModuleFlags:
			m.Flags, err = sub(ctx, f, d.flags)
		case lfwire.ModuleDataTypes:
			var dt *raw.DataType
			dt, err = sub(ctx, f, d.dataType)
			m.DataTypes = append(m.DataTypes, dt)
		case lfwire.ModuleValues:
			var v *raw.Value
			v, err = sub(ctx, f, d.value)
			m.Values = append(m.Values, v)
		case lfwire.ModuleTemplates:
			var t *raw.Template
			t, err = sub(ctx, f, d.template)
			m.Templates = append(m.Templates, t)
		case lfwire.ModuleSynonyms:
			if err := d.gate(ctx, lfversion.TypeSynonyms); err != nil {
				return err
			}
			var s *raw.Synonym
			s, err = sub(ctx, f, d.synonym)
			m.Synonyms = append(m.Synonyms, s)
		case lfwire.ModuleExceptions:
			if err := d.gate(ctx, lfversion.Exceptions); err != nil {
				return err
			}
			var e *raw.Exception
			e, err = sub(ctx, f, d.exception)
			m.Exceptions = append(m.Exceptions, e)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !named {
		return nil, missing(ctx, "name")
	}
	return m, nil
}

func (d *decoder) flags(b []byte) (raw.FeatureFlags, error) {
	const ctx = "FeatureFlags"
	var fl raw.FeatureFlags
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.FlagsForbidPartyLiterals:
			fl.ForbidPartyLiterals, err = f.Bool(ctx)
		case lfwire.FlagsDontDivulgeContractIDs:
			fl.DontDivulgeContractIDsInCreate, err = f.Bool(ctx)
		case lfwire.FlagsDontDiscloseNonConsumingToObs:
			fl.DontDiscloseNonConsumingChoices, err = f.Bool(ctx)
		}
		return err
	})
	return fl, err
}

func (d *decoder) dataType(b []byte) (*raw.DataType, error) {
	const ctx = "DefDataType"
	dt := &raw.DataType{}
	var named bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.DataTypeNameDname:
			dt.Name, err = d.litDotted(ctx, f)
			named = true
		case lfwire.DataTypeNameInternedDname:
			dt.Name, err = d.internedDotted(ctx, f)
			named = true
		case lfwire.DataTypeParams:
			var tv *raw.TypeVar
			tv, err = sub(ctx, f, d.typeVar)
			dt.Params = append(dt.Params, tv)
		case lfwire.DataTypeRecord:
			dt.Kind = raw.DataRecord
			dt.Constructors = nil
			dt.Fields, err = sub(ctx, f, d.fields)
		case lfwire.DataTypeVariant:
			dt.Kind = raw.DataVariant
			dt.Constructors = nil
			dt.Fields, err = sub(ctx, f, d.fields)
		case lfwire.DataTypeEnum:
			if err := d.gate(ctx, lfversion.Enum); err != nil {
				return err
			}
			dt.Kind = raw.DataEnum
			dt.Fields = nil
			dt.Constructors, err = sub(ctx, f, d.enumConstructors)
		case lfwire.DataTypeSerializable:
			dt.Serializable, err = f.Bool(ctx)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !named {
		return nil, missing(ctx, "name")
	}
	if dt.Kind == 0 {
		return nil, missing(ctx, "data constructors")
	}
	return dt, nil
}

func (d *decoder) fields(b []byte) ([]*raw.Field, error) {
	const ctx = "DefDataType.Fields"
	out := []*raw.Field{}
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		if f.Num != lfwire.FieldsFields {
			return nil
		}
		fw, err := sub(ctx, f, d.field)
		out = append(out, fw)
		return err
	})
	return out, err
}

func (d *decoder) enumConstructors(b []byte) ([]raw.Str, error) {
	const ctx = "DefDataType.EnumConstructors"
	out := []raw.Str{}
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		switch f.Num {
		case lfwire.EnumConstructorsStr:
			s, err := d.litStr(ctx, f)
			out = append(out, s)
			return err
		case lfwire.EnumConstructorsInternedStr:
			if !d.names.internedNames {
				return lferr.Malformed(ctx, "interned name in version %s", d.version)
			}
			idx, err := f.Int32s(ctx, nil)
			for _, i := range idx {
				out = append(out, raw.InternedStr(i))
			}
			return err
		}
		return nil
	})
	return out, err
}

func (d *decoder) template(b []byte) (*raw.Template, error) {
	const ctx = "DefTemplate"
	t := &raw.Template{}
	var named, haveParam bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.TemplateTyconDname:
			t.Name, err = d.litDotted(ctx, f)
			named = true
		case lfwire.TemplateTyconInternedDname:
			t.Name, err = d.internedDotted(ctx, f)
			named = true
		case lfwire.TemplateParamStr:
			t.Param, err = d.litStr(ctx, f)
			haveParam = true
		case lfwire.TemplateParamInternedStr:
			t.Param, err = d.internedStr(ctx, f)
			haveParam = true
		case lfwire.TemplatePrecond:
			t.Precond, err = d.expr(ctx, f)
		case lfwire.TemplateSignatories:
			t.Signatories, err = d.expr(ctx, f)
		case lfwire.TemplateAgreement:
			t.Agreement, err = d.expr(ctx, f)
		case lfwire.TemplateObservers:
			t.Observers, err = d.expr(ctx, f)
		case lfwire.TemplateChoices:
			var c *raw.Choice
			c, err = sub(ctx, f, d.choice)
			t.Choices = append(t.Choices, c)
		case lfwire.TemplateKey:
			if err := d.gate(ctx, lfversion.ContractKeys); err != nil {
				return err
			}
			t.Key, err = sub(ctx, f, d.key)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !named {
		return nil, missing(ctx, "tycon")
	}
	if !haveParam {
		return nil, missing(ctx, "param")
	}
	return t, nil
}

func (d *decoder) choice(b []byte) (*raw.Choice, error) {
	const ctx = "TemplateChoice"
	c := &raw.Choice{}
	var named, haveSelf bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.ChoiceNameStr:
			c.Name, err = d.litStr(ctx, f)
			named = true
		case lfwire.ChoiceNameInternedStr:
			c.Name, err = d.internedStr(ctx, f)
			named = true
		case lfwire.ChoiceConsuming:
			c.Consuming, err = f.Bool(ctx)
		case lfwire.ChoiceControllers:
			c.Controller, err = d.expr(ctx, f)
		case lfwire.ChoiceObservers:
			if err := d.gate(ctx, lfversion.ChoiceObservers); err != nil {
				return err
			}
			c.Observers, err = d.expr(ctx, f)
		case lfwire.ChoiceArgBinder:
			err = d.binder(ctx, f, c)
		case lfwire.ChoiceRetType:
			c.ReturnType, err = sub(ctx, f, d.typ)
		case lfwire.ChoiceUpdate:
			c.Update, err = d.expr(ctx, f)
		case lfwire.ChoiceSelfBinderStr:
			c.SelfBinder, err = d.litStr(ctx, f)
			haveSelf = true
		case lfwire.ChoiceSelfBinderInternedStr:
			c.SelfBinder, err = d.internedStr(ctx, f)
			haveSelf = true
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !named {
		return nil, missing(ctx, "name")
	}
	if c.ArgType == nil {
		return nil, missing(ctx, "arg_binder")
	}
	if c.ReturnType == nil {
		return nil, missing(ctx, "ret_type")
	}
	if !haveSelf {
		return nil, missing(ctx, "self_binder")
	}
	return c, nil
}

func (d *decoder) binder(ctx string, f lfwire.Field, c *raw.Choice) error {
	b, err := f.Message(ctx)
	if err != nil {
		return err
	}
	const bctx = "VarWithType"
	var named bool
	err = lfwire.Each(bctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.BinderNameStr:
			c.ArgName, err = d.litStr(bctx, f)
			named = true
		case lfwire.BinderNameInternedStr:
			c.ArgName, err = d.internedStr(bctx, f)
			named = true
		case lfwire.BinderType:
			c.ArgType, err = sub(bctx, f, d.typ)
		}
		return err
	})
	if err != nil {
		return err
	}
	if !named {
		return missing(bctx, "var")
	}
	if c.ArgType == nil {
		return missing(bctx, "type")
	}
	return nil
}

func (d *decoder) key(b []byte) (*raw.Key, error) {
	const ctx = "DefKey"
	k := &raw.Key{}
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.KeyType:
			k.Type, err = sub(ctx, f, d.typ)
		case lfwire.KeyExpr:
			k.Complex = false
			k.Body, err = d.expr(ctx, f)
		case lfwire.KeyComplex:
			if err := d.gate(ctx, lfversion.ComplexContractKeys); err != nil {
				return err
			}
			k.Complex = true
			k.Body, err = d.expr(ctx, f)
		case lfwire.KeyMaintainers:
			k.Maintainers, err = d.expr(ctx, f)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if k.Type == nil {
		return nil, missing(ctx, "type")
	}
	if k.Body == nil {
		return nil, missing(ctx, "key expression")
	}
	if k.Maintainers == nil {
		return nil, missing(ctx, "maintainers")
	}
	return k, nil
}

func (d *decoder) value(b []byte) (*raw.Value, error) {
	const ctx = "DefValue"
	v := &raw.Value{}
	var named bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.ValueNameWithType:
			named = true
			err = d.nameWithType(ctx, f, v)
		case lfwire.ValueExpr:
			v.Body, err = d.expr(ctx, f)
		case lfwire.ValueNoPartyLiterals:
			v.NoPartyLiterals, err = f.Bool(ctx)
		case lfwire.ValueIsTest:
			v.IsTest, err = f.Bool(ctx)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !named {
		return nil, missing(ctx, "name_with_type")
	}
	if v.Body == nil {
		return nil, missing(ctx, "expr")
	}
	return v, nil
}

// nameWithType carries the value name inline as repeated segments, not as a
// DottedName message.
func (d *decoder) nameWithType(ctx string, f lfwire.Field, v *raw.Value) error {
	b, err := f.Message(ctx)
	if err != nil {
		return err
	}
	const nctx = "DefValue.NameWithType"
	var (
		segs     []string
		interned bool
		named    bool
	)
	err = lfwire.Each(nctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.NameWithTypeNameDname:
			if d.names.internedNames {
				return lferr.Malformed(nctx, "literal dotted name in version %s", d.version)
			}
			var s string
			s, err = f.Text(nctx)
			segs = append(segs, s)
			named = true
		case lfwire.NameWithTypeNameInternedDname:
			v.Name, err = d.internedDotted(nctx, f)
			interned, named = true, true
		case lfwire.NameWithTypeType:
			v.Type, err = sub(nctx, f, d.typ)
		}
		return err
	})
	if err != nil {
		return err
	}
	if !named {
		return missing(nctx, "name")
	}
	if !interned {
		v.Name = raw.LitDotted(segs...)
	}
	if v.Type == nil {
		return missing(nctx, "type")
	}
	return nil
}

func (d *decoder) synonym(b []byte) (*raw.Synonym, error) {
	const ctx = "DefTypeSyn"
	s := &raw.Synonym{}
	var named bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.SynonymNameInternedDname:
			s.Name, err = d.internedDotted(ctx, f)
			named = true
		case lfwire.SynonymParams:
			var tv *raw.TypeVar
			tv, err = sub(ctx, f, d.typeVar)
			s.Params = append(s.Params, tv)
		case lfwire.SynonymType:
			s.Type, err = sub(ctx, f, d.typ)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !named {
		return nil, missing(ctx, "name")
	}
	if s.Type == nil {
		return nil, missing(ctx, "type")
	}
	return s, nil
}

func (d *decoder) exception(b []byte) (*raw.Exception, error) {
	const ctx = "DefException"
	e := &raw.Exception{}
	var named bool
	err := lfwire.Each(ctx, b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.ExceptionNameInternedDname:
			e.Name, err = d.internedDotted(ctx, f)
			named = true
		case lfwire.ExceptionMessage:
			e.Message, err = d.expr(ctx, f)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if !named {
		return nil, missing(ctx, "name")
	}
	if e.Message == nil {
		return nil, missing(ctx, "message")
	}
	return e, nil
}
