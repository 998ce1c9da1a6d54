package landmarks

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed data/landmarks.yml data/*.txt
var builtinData embed.FS

const (
	builtinCatalog = "data/landmarks.yml"
	fileRefPrefix  = "file://"
	groupPrefix    = "group-"
)

// ErrUnknownGroup is returned for a group id absent from the catalog.
var ErrUnknownGroup = errors.New("unknown landmark group")

// GroupSpec is the static definition of a landmark group.
type GroupSpec struct {
	ID          int
	Name        string
	Description string
	Queries     []string
}

// Catalog is the fixed set of landmark groups known to the program.
type Catalog struct {
	groups []GroupSpec
}

type catalogFile struct {
	Groups []struct {
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		Queries     []string `yaml:"queries"`
	} `yaml:"groups"`
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return parseCatalog(builtinData, builtinCatalog)
}

// LoadCatalog reads a catalog file. An empty path selects DefaultCatalog.
// file:// queries are resolved relative to the catalog's directory.
func LoadCatalog(p string) (*Catalog, error) {
	if p == "" {
		return DefaultCatalog()
	}
	return parseCatalog(os.DirFS(filepath.Dir(p)), filepath.Base(p))
}

func parseCatalog(fsys fs.FS, name string) (*Catalog, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read landmark catalog %s", name)
	}
	var raw catalogFile
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, errors.Wrapf(err, "invalid YAML in landmark catalog %s", name)
	}

	base := path.Dir(name)
	seen := map[int]bool{}
	c := &Catalog{}
	for _, g := range raw.Groups {
		id, err := ParseGroupID(g.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "landmark catalog %s", name)
		}
		if seen[id] {
			return nil, errors.Newf("landmark catalog %s: duplicate group %s", name, g.Name)
		}
		seen[id] = true

		var queries []string
		for _, q := range g.Queries {
			if !strings.HasPrefix(q, fileRefPrefix) {
				if q = strings.TrimSpace(q); q != "" {
					queries = append(queries, q)
				}
				continue
			}
			listed, err := readQueryList(fsys, path.Join(base, strings.TrimPrefix(q, fileRefPrefix)))
			if err != nil {
				return nil, err
			}
			queries = append(queries, listed...)
		}
		if len(queries) == 0 {
			return nil, errors.Newf("landmark catalog %s: group %s has no landmarks", name, g.Name)
		}
		c.groups = append(c.groups, GroupSpec{
			ID:          id,
			Name:        GroupName(id),
			Description: g.Description,
			Queries:     queries,
		})
	}
	sort.Slice(c.groups, func(i, j int) bool { return c.groups[i].ID < c.groups[j].ID })
	return c, nil
}

func readQueryList(fsys fs.FS, name string) ([]string, error) {
	b, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read landmark list %s", name)
	}
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// Groups returns every group, ordered by id.
func (c *Catalog) Groups() []GroupSpec {
	out := make([]GroupSpec, len(c.groups))
	copy(out, c.groups)
	return out
}

// Lookup returns the group with the given id.
func (c *Catalog) Lookup(id int) (GroupSpec, error) {
	for _, g := range c.groups {
		if g.ID == id {
			return g, nil
		}
	}
	names := make([]string, 0, len(c.groups))
	for _, g := range c.groups {
		names = append(names, g.Name)
	}
	return GroupSpec{}, errors.WithHintf(
		errors.Wrapf(ErrUnknownGroup, "group %d", id),
		"available: %s", strings.Join(names, ", "),
	)
}

// GroupName returns the canonical directory name for a group id.
func GroupName(id int) string {
	return groupPrefix + strconv.Itoa(id)
}

// ParseGroupID accepts "3" or "group-3".
func ParseGroupID(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), groupPrefix))
	if err != nil || n < 0 {
		return 0, errors.Newf("invalid landmark group %q", s)
	}
	return n, nil
}
