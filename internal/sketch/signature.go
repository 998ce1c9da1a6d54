package sketch

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
)

// ErrNoMinHash is returned when a signature file holds no usable MinHash.
var ErrNoMinHash = errors.New("signature has no minhash")

// signatureFile mirrors the sourmash JSON signature layout. Only the fields
// needed to rebuild a hash set are decoded.
type signatureFile struct {
	Name       string         `json:"name"`
	Filename   string         `json:"filename"`
	Signatures []minHashEntry `json:"signatures"`
}

type minHashEntry struct {
	Num      int      `json:"num"`
	KSize    int      `json:"ksize"`
	Molecule string   `json:"molecule"`
	Mins     []uint64 `json:"mins"`
}

// ReadSignature parses a sourmash JSON signature from r and returns the
// MinHash matching ksize. A ksize of 0 selects the first MinHash.
//
// The document may be a single signature object or a list of them.
func ReadSignature(r io.Reader, ksize int) (*Sketch, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read signature")
	}

	var files []signatureFile
	if err := json.Unmarshal(raw, &files); err != nil {
		var one signatureFile
		if err2 := json.Unmarshal(raw, &one); err2 != nil {
			return nil, errors.Wrap(err, "invalid signature JSON")
		}
		files = []signatureFile{one}
	}

	for _, f := range files {
		name := f.Name
		if name == "" {
			name = f.Filename
		}
		for _, mh := range f.Signatures {
			if ksize != 0 && mh.KSize != ksize {
				continue
			}
			if len(mh.Mins) == 0 {
				continue
			}
			return New(mh.Mins, WithName(name), WithKSize(mh.KSize)), nil
		}
	}
	if ksize != 0 {
		return nil, errors.Wrapf(ErrNoMinHash, "ksize=%d", ksize)
	}
	return nil, ErrNoMinHash
}
