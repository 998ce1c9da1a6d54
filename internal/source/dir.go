package source

import (
	"context"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/vectome/vectome/internal/sketch"
)

// signatureExts are tried in order when looking up an identifier.
var signatureExts = []string{".sig", ".sig.json", ".json"}

type dirSource struct {
	dir   string
	ksize int
}

// NewDir returns a Source reading sourmash JSON signatures from dir.
//
// An identifier resolves to dir/<Key(id)><ext> for the first existing
// extension in .sig, .sig.json, .json. A missing file is an unresolved
// identifier; a file without a usable MinHash is an unavailable sketch.
func NewDir(dir string, ksize int) Source {
	return &dirSource{dir: dir, ksize: ksize}
}

func (d *dirSource) Name() string { return "dir:" + d.dir }

func (d *dirSource) Resolve(ctx context.Context, id string) (*sketch.Sketch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := Key(id)
	if key == "" {
		return nil, Unresolved(id, errors.New("empty identifier"))
	}

	for _, ext := range signatureExts {
		path := filepath.Join(d.dir, key+ext)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, Unavailable(id, err)
		}
		s, err := sketch.ReadSignature(f, d.ksize)
		_ = f.Close()
		if err != nil {
			return nil, Unavailable(id, err)
		}
		return s, nil
	}
	return nil, Unresolved(id, errors.Newf("no signature file for %q in %s", key, d.dir))
}
