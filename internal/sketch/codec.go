package sketch

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/tinylib/msgp/msgp"
)

// codecVersion is written into every encoded sketch.
const codecVersion = 1

// ErrCodecVersion is returned when a cached sketch was written by an
// incompatible encoder.
var ErrCodecVersion = errors.New("unsupported sketch encoding version")

// MarshalMsg implements msgp.Marshaler.
func (s *Sketch) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.Require(b, s.Msgsize())
	o = msgp.AppendMapHeader(o, 5)
	o = msgp.AppendString(o, "v")
	o = msgp.AppendInt(o, codecVersion)
	o = msgp.AppendString(o, "name")
	o = msgp.AppendString(o, s.name)
	o = msgp.AppendString(o, "ksize")
	o = msgp.AppendInt(o, s.ksize)
	o = msgp.AppendString(o, "size")
	o = msgp.AppendUint64(o, s.size)
	o = msgp.AppendString(o, "hashes")
	o = msgp.AppendArrayHeader(o, uint32(len(s.hashes)))
	for _, h := range s.hashes {
		o = msgp.AppendUint64(o, h)
	}
	return o, nil
}

// UnmarshalMsg implements msgp.Unmarshaler. Unknown keys are skipped.
func (s *Sketch) UnmarshalMsg(bts []byte) ([]byte, error) {
	n, bts, err := msgp.ReadMapHeaderBytes(bts)
	if err != nil {
		return bts, msgp.WrapError(err)
	}
	var out Sketch
	for ; n > 0; n-- {
		var field []byte
		field, bts, err = msgp.ReadMapKeyZC(bts)
		if err != nil {
			return bts, msgp.WrapError(err)
		}
		switch string(field) {
		case "v":
			var v int
			v, bts, err = msgp.ReadIntBytes(bts)
			if err != nil {
				return bts, msgp.WrapError(err, "v")
			}
			if v != codecVersion {
				return bts, errors.Wrapf(ErrCodecVersion, "got %d want %d", v, codecVersion)
			}
		case "name":
			out.name, bts, err = msgp.ReadStringBytes(bts)
			if err != nil {
				return bts, msgp.WrapError(err, "name")
			}
		case "ksize":
			out.ksize, bts, err = msgp.ReadIntBytes(bts)
			if err != nil {
				return bts, msgp.WrapError(err, "ksize")
			}
		case "size":
			out.size, bts, err = msgp.ReadUint64Bytes(bts)
			if err != nil {
				return bts, msgp.WrapError(err, "size")
			}
		case "hashes":
			var sz uint32
			sz, bts, err = msgp.ReadArrayHeaderBytes(bts)
			if err != nil {
				return bts, msgp.WrapError(err, "hashes")
			}
			// Every element takes at least one byte.
			if uint64(sz) > uint64(len(bts)) {
				return bts, msgp.WrapError(msgp.ErrShortBytes, "hashes")
			}
			out.hashes = make([]uint64, sz)
			for i := range out.hashes {
				out.hashes[i], bts, err = msgp.ReadUint64Bytes(bts)
				if err != nil {
					return bts, msgp.WrapError(err, "hashes", i)
				}
			}
		default:
			bts, err = msgp.Skip(bts)
			if err != nil {
				return bts, msgp.WrapError(err)
			}
		}
	}
	// Re-establish the sorted-unique invariant in case the file was edited.
	*s = *New(out.hashes, WithName(out.name), WithKSize(out.ksize), WithSize(out.size))
	return bts, nil
}

// Msgsize returns an upper bound on the encoded size.
func (s *Sketch) Msgsize() int {
	return msgp.MapHeaderSize +
		msgp.StringPrefixSize + 1 + msgp.IntSize +
		msgp.StringPrefixSize + 4 + msgp.StringPrefixSize + len(s.name) +
		msgp.StringPrefixSize + 5 + msgp.IntSize +
		msgp.StringPrefixSize + 4 + msgp.Uint64Size +
		msgp.StringPrefixSize + 6 + msgp.ArrayHeaderSize + len(s.hashes)*msgp.Uint64Size
}

// WriteFile encodes s to path.
func WriteFile(path string, s *Sketch) error {
	b, err := s.MarshalMsg(nil)
	if err != nil {
		return errors.Wrapf(err, "cannot encode sketch %q", s.name)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "cannot write sketch %s", path)
	}
	return nil
}

// ReadFile decodes the sketch stored at path.
func ReadFile(path string) (*Sketch, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read sketch %s", path)
	}
	var s Sketch
	rest, err := s.UnmarshalMsg(b)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode sketch %s", path)
	}
	if len(rest) != 0 {
		return nil, errors.Newf("trailing %d bytes in sketch %s", len(rest), path)
	}
	return &s, nil
}
