package lf

// DefinitionKind tags Definition.
type DefinitionKind int

const (
	DefDataType DefinitionKind = iota + 1
	DefTemplate
	DefValue
	DefSynonym
	DefException
)

func (k DefinitionKind) String() string {
	switch k {
	case DefDataType:
		return "data type"
	case DefTemplate:
		return "template"
	case DefValue:
		return "value"
	case DefSynonym:
		return "synonym"
	case DefException:
		return "exception"
	default:
		return "unknown"
	}
}

// Definition is a named module member. DataType is also set for templates
// and exceptions when the module defines their same-named record.
type Definition struct {
	Kind      DefinitionKind
	DataType  *DataType
	Template  *Template
	Value     *Value
	Synonym   *Synonym
	Exception *Exception
}

// Definitions returns the type-level members of m keyed by local name:
// data types, synonyms, templates and exceptions. Templates and exceptions
// shadow their same-named record, which they carry. Values live in their own
// namespace; see ValueDefinitions.
func Definitions(m *Module) map[string]Definition {
	out := make(map[string]Definition, len(m.DataTypes)+len(m.Synonyms))
	for _, s := range m.Synonyms {
		out[s.Name] = Definition{Kind: DefSynonym, Synonym: s}
	}
	records := make(map[string]*DataType, len(m.DataTypes))
	for _, d := range m.DataTypes {
		out[d.Name] = Definition{Kind: DefDataType, DataType: d}
		records[d.Name] = d
	}
	for _, e := range m.Exceptions {
		out[e.Name] = Definition{Kind: DefException, Exception: e, DataType: records[e.Name]}
	}
	for _, t := range m.Templates {
		out[t.Name] = Definition{Kind: DefTemplate, Template: t, DataType: records[t.Name]}
	}
	return out
}

// ValueDefinitions returns the values of m keyed by local name. A value may
// share its name with a type-level member.
func ValueDefinitions(m *Module) map[string]Definition {
	out := make(map[string]Definition, len(m.Values))
	for _, v := range m.Values {
		out[v.Name] = Definition{Kind: DefValue, Value: v}
	}
	return out
}
