package main

import (
	"encoding/json"
	"io"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// report is a command result. Every report renders as text and marshals
// through its json/yaml tags; CBOR reuses the json tags.
type report interface {
	writeText(w io.Writer) error
}

var formats = map[string]func(w io.Writer, r report) error{
	"text": func(w io.Writer, r report) error { return r.writeText(w) },
	"json": writeJSON,
	"yaml": writeYAML,
	"cbor": writeCBOR,
}

// cborMode uses Core Deterministic Encoding so the same report always
// produces identical bytes.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("lfpkg: CBOR encoder initialization failed: " + err.Error())
	}
}

func (a *app) emit(r report) error {
	return formats[a.cfg.Output](a.out, r)
}

func writeJSON(w io.Writer, r report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeYAML(w io.Writer, r report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func writeCBOR(w io.Writer, r report) error {
	b, err := cborMode.Marshal(r)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
