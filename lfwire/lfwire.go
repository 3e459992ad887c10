// Package lfwire lists the field numbers and enum tags of the package payload
// wire format. All structures are protobuf wire format; the decoder and the
// fixture encoder both read their numbering from here.
package lfwire

import "google.golang.org/protobuf/encoding/protowire"

// Archive is the single-payload envelope (.dalf).
const (
	ArchiveHashFunction protowire.Number = 1
	ArchivePayload      protowire.Number = 3
	ArchiveHash         protowire.Number = 4
)

// HashSHA256 is the only supported Archive.hash_function value.
const HashSHA256 = 0

// ArchivePayload carries the version identifier and the package body.
const (
	PayloadLF0   protowire.Number = 1
	PayloadLF1   protowire.Number = 2
	PayloadMinor protowire.Number = 3
)

// Package
const (
	PackageModules             protowire.Number = 1
	PackageInternedStrings     protowire.Number = 2
	PackageInternedDottedNames protowire.Number = 3
	PackageMetadata            protowire.Number = 4
	PackageInternedTypes       protowire.Number = 5
)

// InternedDottedName
const InternedDottedNameSegments protowire.Number = 1

// PackageMetadata
const (
	MetadataNameInterned    protowire.Number = 1
	MetadataVersionInterned protowire.Number = 2
)

// DottedName
const DottedNameSegments protowire.Number = 1

// Module
const (
	ModuleNameDname         protowire.Number = 1
	ModuleFlags             protowire.Number = 2
	ModuleDataTypes         protowire.Number = 3
	ModuleValues            protowire.Number = 4
	ModuleTemplates         protowire.Number = 7
	ModuleNameInternedDname protowire.Number = 8
	ModuleSynonyms          protowire.Number = 9
	ModuleExceptions        protowire.Number = 10
)

// FeatureFlags
const (
	FlagsForbidPartyLiterals           protowire.Number = 1
	FlagsDontDivulgeContractIDs        protowire.Number = 2
	FlagsDontDiscloseNonConsumingToObs protowire.Number = 3
)

// DefDataType
const (
	DataTypeNameDname         protowire.Number = 1
	DataTypeParams            protowire.Number = 2
	DataTypeRecord            protowire.Number = 3
	DataTypeVariant           protowire.Number = 4
	DataTypeSerializable      protowire.Number = 5
	DataTypeLocation          protowire.Number = 6
	DataTypeEnum              protowire.Number = 7
	DataTypeNameInternedDname protowire.Number = 8
)

// DefDataType.Fields
const FieldsFields protowire.Number = 1

// DefDataType.EnumConstructors
const (
	EnumConstructorsStr         protowire.Number = 1
	EnumConstructorsInternedStr protowire.Number = 2
)

// FieldWithType
const (
	FieldNameStr         protowire.Number = 1
	FieldType            protowire.Number = 2
	FieldNameInternedStr protowire.Number = 3
)

// TypeVarWithKind
const (
	TypeVarNameStr         protowire.Number = 1
	TypeVarKind            protowire.Number = 2
	TypeVarNameInternedStr protowire.Number = 3
)

// Kind
const (
	KindStar  protowire.Number = 1
	KindArrow protowire.Number = 2
	KindNat   protowire.Number = 3
)

// Kind.Arrow
const (
	KindArrowParams protowire.Number = 1
	KindArrowResult protowire.Number = 2
)

// Type (oneof Sum)
const (
	TypeVar      protowire.Number = 1
	TypeCon      protowire.Number = 2
	TypePrim     protowire.Number = 3
	TypeFun      protowire.Number = 4
	TypeForall   protowire.Number = 5
	TypeStruct   protowire.Number = 7
	TypeNat      protowire.Number = 8
	TypeSyn      protowire.Number = 9
	TypeInterned protowire.Number = 10
)

// Type.Var
const (
	VarNameStr         protowire.Number = 1
	VarArgs            protowire.Number = 2
	VarNameInternedStr protowire.Number = 3
)

// Type.Con and Type.Syn
const (
	ConTycon protowire.Number = 1
	ConArgs  protowire.Number = 2
)

// Type.Prim
const (
	PrimTag  protowire.Number = 1
	PrimArgs protowire.Number = 2
)

// Type.Fun
const (
	FunParams protowire.Number = 1
	FunResult protowire.Number = 2
)

// Type.Forall
const (
	ForallVars protowire.Number = 1
	ForallBody protowire.Number = 2
)

// Type.Struct
const StructFields protowire.Number = 1

// TypeConName and TypeSynName
const (
	TyConModule            protowire.Number = 1
	TyConNameDname         protowire.Number = 2
	TyConNameInternedDname protowire.Number = 3
)

// ModuleRef
const (
	ModuleRefPackage             protowire.Number = 1
	ModuleRefModuleDname         protowire.Number = 2
	ModuleRefModuleInternedDname protowire.Number = 3
)

// PackageRef (oneof Sum)
const (
	PackageRefSelf       protowire.Number = 1
	PackageRefIDStr      protowire.Number = 2
	PackageRefIDInterned protowire.Number = 3
)

// DefTemplate
const (
	TemplateTyconDname         protowire.Number = 1
	TemplateParamStr           protowire.Number = 2
	TemplatePrecond            protowire.Number = 4
	TemplateSignatories        protowire.Number = 5
	TemplateAgreement          protowire.Number = 6
	TemplateChoices            protowire.Number = 7
	TemplateObservers          protowire.Number = 8
	TemplateLocation           protowire.Number = 9
	TemplateKey                protowire.Number = 10
	TemplateParamInternedStr   protowire.Number = 11
	TemplateTyconInternedDname protowire.Number = 12
)

// TemplateChoice
const (
	ChoiceNameStr               protowire.Number = 1
	ChoiceConsuming             protowire.Number = 2
	ChoiceControllers           protowire.Number = 3
	ChoiceArgBinder             protowire.Number = 4
	ChoiceRetType               protowire.Number = 5
	ChoiceUpdate                protowire.Number = 6
	ChoiceSelfBinderStr         protowire.Number = 7
	ChoiceLocation              protowire.Number = 8
	ChoiceNameInternedStr       protowire.Number = 9
	ChoiceSelfBinderInternedStr protowire.Number = 10
	ChoiceObservers             protowire.Number = 11
)

// VarWithType
const (
	BinderNameStr         protowire.Number = 1
	BinderType            protowire.Number = 2
	BinderNameInternedStr protowire.Number = 3
)

// DefTemplate.DefKey
const (
	KeyType        protowire.Number = 1
	KeyExpr        protowire.Number = 2
	KeyMaintainers protowire.Number = 3
	KeyComplex     protowire.Number = 4
)

// DefValue
const (
	ValueNameWithType    protowire.Number = 1
	ValueExpr            protowire.Number = 2
	ValueNoPartyLiterals protowire.Number = 3
	ValueIsTest          protowire.Number = 4
	ValueLocation        protowire.Number = 5
)

// DefValue.NameWithType
const (
	NameWithTypeNameDname         protowire.Number = 1
	NameWithTypeType              protowire.Number = 2
	NameWithTypeNameInternedDname protowire.Number = 3
)

// DefTypeSyn
const (
	SynonymNameInternedDname protowire.Number = 1
	SynonymParams            protowire.Number = 2
	SynonymType              protowire.Number = 3
	SynonymLocation          protowire.Number = 4
)

// DefException
const (
	ExceptionNameInternedDname protowire.Number = 1
	ExceptionLocation          protowire.Number = 2
	ExceptionMessage           protowire.Number = 3
)

// PrimType tags. Tags 4 and 7 are retired and never valid.
const (
	PrimUnit         = 0
	PrimBool         = 1
	PrimInt64        = 2
	PrimDecimal      = 3
	PrimText         = 5
	PrimTimestamp    = 6
	PrimParty        = 8
	PrimList         = 9
	PrimUpdate       = 10
	PrimScenario     = 11
	PrimDate         = 12
	PrimContractID   = 13
	PrimOptional     = 14
	PrimArrow        = 15
	PrimTextMap      = 16
	PrimNumeric      = 17
	PrimAny          = 18
	PrimTypeRep      = 19
	PrimGenMap       = 20
	PrimBigNumeric   = 21
	PrimRoundingMode = 22
	PrimAnyException = 23
)
