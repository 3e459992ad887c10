package dar

import (
	"google.golang.org/protobuf/encoding/protowire"

	"xdao.co/lfpkg/cidutil"
	"xdao.co/lfpkg/lferr"
	"xdao.co/lfpkg/lfwire"
)

// Envelope is a decoded single-payload archive (.dalf).
type Envelope struct {
	// Payload is the exact byte sequence the package id is computed over.
	Payload []byte
	// Hash is the declared package id, empty when the envelope omits it.
	Hash string
}

// DecodeDalf unwraps a .dalf envelope. ctx names the entry in errors.
//
// It does not check Hash against Payload; the caller owns the hash function.
func DecodeDalf(ctx string, b []byte) (Envelope, error) {
	var (
		env         Envelope
		havePayload bool
		hashFn      uint64
	)
	err := lfwire.Each("Archive", b, func(f lfwire.Field) error {
		var err error
		switch f.Num {
		case lfwire.ArchiveHashFunction:
			hashFn, err = f.Uint("Archive")
		case lfwire.ArchivePayload:
			env.Payload, err = f.Message("Archive")
			havePayload = true
		case lfwire.ArchiveHash:
			env.Hash, err = f.Text("Archive")
		}
		return err
	})
	if err != nil {
		return Envelope{}, lferr.Wrap(lferr.KindContainer, lferr.RuleCorrupt, ctx, err, "invalid archive envelope")
	}
	if hashFn != lfwire.HashSHA256 {
		return Envelope{}, lferr.Corrupt(ctx, "unsupported hash function %d", hashFn)
	}
	if !havePayload {
		return Envelope{}, lferr.Corrupt(ctx, "archive envelope has no payload")
	}
	return env, nil
}

// EncodeDalf wraps payload in a .dalf envelope declaring its package id.
func EncodeDalf(payload []byte) []byte {
	return encodeDalf(payload, cidutil.PackageID(payload))
}

func encodeDalf(payload []byte, hash string) []byte {
	var b []byte
	b = protowire.AppendTag(b, lfwire.ArchiveHashFunction, protowire.VarintType)
	b = protowire.AppendVarint(b, lfwire.HashSHA256)
	b = protowire.AppendTag(b, lfwire.ArchivePayload, protowire.BytesType)
	b = protowire.AppendBytes(b, payload)
	if hash != "" {
		b = protowire.AppendTag(b, lfwire.ArchiveHash, protowire.BytesType)
		b = protowire.AppendString(b, hash)
	}
	return b
}
