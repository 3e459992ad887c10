// Package lferr defines the structured error taxonomy shared by every decode stage.
//
// Each stage fails fast with a *Error carrying a stable Kind, a stable Rule and
// the offending Detail (version identifier, intern index, qualified name, entry
// path). Callers should branch on Kind/Rule rather than matching error strings.
package lferr

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling.
type Kind string

const (
	KindContainer Kind = "Container"
	KindVersion   Kind = "Version"
	KindDecode    Kind = "Decode"
	KindModel     Kind = "Model"
	KindIndex     Kind = "Index"
)

// Rule names the violated invariant within a Kind.
type Rule string

const (
	// Container
	RuleCorrupt          Rule = "CORRUPT"
	RuleMissingManifest  Rule = "MISSING_MANIFEST"
	RuleDuplicatePackage Rule = "DUPLICATE_PACKAGE"

	// Version
	RuleUnsupportedVersion Rule = "UNSUPPORTED_VERSION"

	// Decode
	RuleMalformed          Rule = "MALFORMED"
	RuleInvalidInternIndex Rule = "INVALID_INTERN_INDEX"
	RuleDuplicateName      Rule = "DUPLICATE_NAME"

	// Model
	RuleUnsupportedConstruct Rule = "UNSUPPORTED_CONSTRUCT"

	// Index
	RuleDuplicatePackageID  Rule = "DUPLICATE_PACKAGE_ID"
	RuleUnresolvedReference Rule = "UNRESOLVED_REFERENCE"
)

// Error is the library's structured error type.
//
// Detail is the offending identifier, reported verbatim. Message is intended
// for humans; do not match on it.
type Error struct {
	Kind    Kind
	Rule    Rule
	Detail  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	s := string(e.Kind) + "/" + string(e.Rule)
	if e.Message != "" {
		s += ": " + e.Message
	}
	if e.Detail != "" {
		s += " (" + e.Detail + ")"
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another *Error by Kind and Rule so callers can use errors.Is
// against the sentinel-style values built with New.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind && e.Rule == t.Rule
}

// New constructs an error with a formatted message.
func New(kind Kind, rule Rule, detail string, format string, args ...any) error {
	return &Error{Kind: kind, Rule: rule, Detail: detail, Message: fmt.Sprintf(format, args...)}
}

// Wrap is like New but records cause.
func Wrap(kind Kind, rule Rule, detail string, cause error, format string, args ...any) error {
	return &Error{Kind: kind, Rule: rule, Detail: detail, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func Corrupt(detail string, format string, args ...any) error {
	return New(KindContainer, RuleCorrupt, detail, format, args...)
}

func Malformed(detail string, format string, args ...any) error {
	return New(KindDecode, RuleMalformed, detail, format, args...)
}

func InvalidInternIndex(index int64, table string) error {
	return New(KindDecode, RuleInvalidInternIndex, fmt.Sprintf("%d", index), "index out of range for %s", table)
}

func UnsupportedVersion(identifier string) error {
	return New(KindVersion, RuleUnsupportedVersion, identifier, "unsupported language version")
}

func UnsupportedConstruct(detail string, format string, args ...any) error {
	return New(KindModel, RuleUnsupportedConstruct, detail, format, args...)
}

func UnresolvedReference(packageID, qualifiedName string) error {
	return New(KindIndex, RuleUnresolvedReference, qualifiedName, "no definition in package %s", packageID)
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// Is reports whether err is (or wraps) a *Error with the given Kind and Rule.
func Is(err error, kind Kind, rule Rule) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind && e.Rule == rule
}

// RuleOf returns the stable Rule for a structured error, or "" if unknown.
func RuleOf(err error) Rule {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Rule
}

// DetailOf returns the offending identifier of a structured error, or "".
func DetailOf(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Detail
}

func DuplicateName(detail string, what string) error {
	return New(KindDecode, RuleDuplicateName, detail, "duplicate %s", what)
}
