package pipeline

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vectome/vectome/internal/source"
)

// Missing fills every vector column of a row whose identifier failed.
const Missing = "NA"

// ReadIdentifiers reads one identifier per line, skipping blank lines and
// trailing whitespace.
func ReadIdentifiers(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "cannot read identifiers")
	}
	return out, nil
}

// WriteTSV writes one tab-separated line per row: the identifier, then the
// vector components. Failed rows carry Missing in every column so that the
// table stays rectangular and row order matches the input.
func WriteTSV(w io.Writer, res *Result, header bool) error {
	bw := bufio.NewWriter(w)
	if header {
		bw.WriteString("query")
		for _, c := range res.Columns {
			bw.WriteByte('\t')
			bw.WriteString(c)
		}
		bw.WriteByte('\n')
	}
	var buf []byte
	for _, row := range res.Rows {
		bw.WriteString(row.ID)
		if row.Err != nil {
			for range res.Columns {
				bw.WriteByte('\t')
				bw.WriteString(Missing)
			}
		} else {
			for _, v := range row.Vector {
				bw.WriteByte('\t')
				buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
				bw.Write(buf)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ErrorKind names the failure class of a row error for reports. A row that
// timed out is still an unresolved identifier but reports as "timeout".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, source.ErrUnresolvedIdentifier):
		return "unresolved"
	case errors.Is(err, source.ErrSketchUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
