package lfversion

// Feature is a construct gated on a minimum version. Max, when set, is the
// first version that no longer admits it.
type Feature struct {
	Name string
	Min  Version
	Max  *Version
}

var (
	Optional            = Feature{Name: "OPTIONAL", Min: V1_1}
	ArrowType           = Feature{Name: "ARROW_TYPE", Min: V1_1}
	TextMap             = Feature{Name: "TEXTMAP", Min: V1_3}
	ContractKeys        = Feature{Name: "CONTRACT_KEYS", Min: V1_3}
	ComplexContractKeys = Feature{Name: "COMPLEX_CONTRACT_KEYS", Min: V1_4}
	Enum                = Feature{Name: "ENUM", Min: V1_6}
	InternedPackageID   = Feature{Name: "INTERNED_PACKAGE_ID", Min: V1_6}
	InternedStrings     = Feature{Name: "INTERNED_STRINGS", Min: V1_7}
	InternedDottedNames = Feature{Name: "INTERNED_DOTTED_NAMES", Min: V1_7}
	Numeric             = Feature{Name: "NUMERIC", Min: V1_7}
	AnyType             = Feature{Name: "ANY_TYPE", Min: V1_7}
	TypeRep             = Feature{Name: "TYPE_REP", Min: V1_7}
	PackageMetadata     = Feature{Name: "PACKAGE_METADATA", Min: V1_8}
	TypeSynonyms        = Feature{Name: "TYPE_SYNONYMS", Min: V1_8}
	GenMap              = Feature{Name: "GENMAP", Min: V1_11}
	ChoiceObservers     = Feature{Name: "CHOICE_OBSERVERS", Min: V1_11}
	InternedTypes       = Feature{Name: "INTERNED_TYPES", Min: V1_11}
	BigNumeric          = Feature{Name: "BIGNUMERIC", Min: V1_13}
	Exceptions          = Feature{Name: "EXCEPTIONS", Min: V1_14}
	Decimal             = Feature{Name: "DECIMAL", Min: V1_0, Max: &V1_7}
)
