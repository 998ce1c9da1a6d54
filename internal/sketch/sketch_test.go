package sketch

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"
)

func TestNew_SortsAndDeduplicates(t *testing.T) {
	in := []uint64{9, 3, 3, 7, 1}
	s := New(in)
	require.Equal(t, []uint64{1, 3, 7, 9}, s.Hashes())
	require.Equal(t, 4, s.Len())
	require.Equal(t, uint64(4), s.Size(), "size falls back to hash count")
	require.Equal(t, []uint64{9, 3, 3, 7, 1}, in, "input must not be mutated")
}

func TestJaccard_Extremes(t *testing.T) {
	a := New([]uint64{1, 2, 3, 4})
	require.Equal(t, 0.0, JaccardDistance(a, New([]uint64{4, 3, 2, 1})))
	require.Equal(t, 1.0, JaccardDistance(a, New([]uint64{5, 6, 7})))
	require.Equal(t, 0.0, JaccardDistance(New(nil), New(nil)), "empty sketches are identical")
	require.Equal(t, 1.0, JaccardDistance(a, New(nil)))
}

func TestJaccard_PartialOverlap(t *testing.T) {
	a := New([]uint64{1, 2, 3, 4})
	b := New([]uint64{3, 4, 5, 6})
	// |A∩B| = 2, |A∪B| = 6
	require.InDelta(t, 2.0/6.0, Jaccard(a, b), 1e-12)
	require.InDelta(t, Jaccard(a, b), Jaccard(b, a), 0)
}

func TestCodec_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.msgp")
	in := New([]uint64{42, 7, 1 << 63}, WithName("E. coli"), WithKSize(51), WithSize(4_600_000))
	require.NoError(t, WriteFile(path, in))

	out, err := ReadFile(path)
	require.NoError(t, err)
	require.True(t, in.Equal(out))
	require.Equal(t, "E. coli", out.Name())
	require.Equal(t, 51, out.KSize())
	require.Equal(t, uint64(4_600_000), out.Size())
}

func TestCodec_TruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.msgp")
	b, err := New([]uint64{1, 2, 3}).MarshalMsg(nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b[:len(b)-3], 0o644))

	_, err = ReadFile(path)
	require.Error(t, err)
}

func TestCodec_OversizedHashHeader(t *testing.T) {
	b := msgp.AppendMapHeader(nil, 1)
	b = msgp.AppendString(b, "hashes")
	b = msgp.AppendArrayHeader(b, math.MaxUint32)
	b = msgp.AppendUint64(b, 1)

	var s Sketch
	_, err := s.UnmarshalMsg(b)
	require.Error(t, err)
	require.Contains(t, err.Error(), "hashes")

	path := filepath.Join(t.TempDir(), "s.msgp")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	_, err = ReadFile(path)
	require.Error(t, err)
}

func TestReadSignature_List(t *testing.T) {
	doc := `[{"class":"sourmash_signature","name":"Escherichia coli","signatures":[
		{"num":3,"ksize":21,"mins":[5,6]},
		{"num":3,"ksize":51,"mins":[3,1,2]}]}]`

	s, err := ReadSignature(strings.NewReader(doc), 51)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, s.Hashes())
	require.Equal(t, "Escherichia coli", s.Name())
	require.Equal(t, 51, s.KSize())

	first, err := ReadSignature(strings.NewReader(doc), 0)
	require.NoError(t, err)
	require.Equal(t, 21, first.KSize())
}

func TestReadSignature_NoMatchingMinHash(t *testing.T) {
	doc := `{"name":"x","signatures":[{"ksize":21,"mins":[]}]}`
	_, err := ReadSignature(strings.NewReader(doc), 0)
	require.True(t, errors.Is(err, ErrNoMinHash))
}
