package lfversion

import (
	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/lfwire"
)

// Payload is a version-tagged package body.
type Payload struct {
	Version Version
	// Body is the encoded package message.
	Body []byte
}

// Identifier returns the version identifier as it appears in the payload.
func (p Payload) Identifier() string { return p.Version.String() }

// Detect reads the version identifier embedded in payload and selects the
// supported version it names. It does not decode the package body.
func Detect(payload []byte) (Payload, error) {
	var (
		minor   string
		body    []byte
		haveLF0 bool
		haveLF1 bool
	)
	err := lfwire.Each("ArchivePayload", payload, func(f lfwire.Field) error {
		switch f.Num {
		case lfwire.PayloadMinor:
			var err error
			minor, err = f.Text("ArchivePayload")
			return err
		case lfwire.PayloadLF1:
			b, err := f.Message("ArchivePayload")
			if err != nil {
				return err
			}
			// Repeated occurrences of a message field merge, which for wire
			// bytes is concatenation.
			body = append(body, b...)
			haveLF1 = true
		case lfwire.PayloadLF0:
			if _, err := f.Message("ArchivePayload"); err != nil {
				return err
			}
			haveLF0 = true
		}
		return nil
	})
	if err != nil {
		return Payload{}, err
	}
	switch {
	case haveLF0 && haveLF1:
		return Payload{}, lferr.Malformed("ArchivePayload", "both major version bodies present")
	case haveLF0:
		id := "0"
		if minor != "" {
			id += "." + minor
		}
		return Payload{}, lferr.UnsupportedVersion(id)
	case !haveLF1:
		return Payload{}, lferr.Malformed("ArchivePayload", "missing package body")
	}
	v, err := lookup("1", minor, "1."+minor)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Version: v, Body: body}, nil
}
