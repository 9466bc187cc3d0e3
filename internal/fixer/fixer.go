// Package fixer rewrites post frontmatter in place into the canonical shape
// the normalizer expects. Running it twice produces no further changes.
package fixer

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"zazasite/internal/ingest"
)

var nodeFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

type FileChange struct {
	Path    string
	Changes []string
}

type Report struct {
	Scanned int
	Changed []FileChange
	Failed  int
}

type Fixer struct {
	DryRun bool
	Log    zerolog.Logger
}

// Run fixes every content file under root.
func (f *Fixer) Run(root string) (*Report, error) {
	files, err := ingest.DiscoverSource(root)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	rep := &Report{}
	for _, sf := range files {
		rep.Scanned++
		changes, err := f.FixFile(sf.Path)
		if err != nil {
			rep.Failed++
			f.Log.Warn().Err(err).Str("path", sf.Path).Msg("cannot fix frontmatter")
			continue
		}
		if len(changes) == 0 {
			continue
		}
		rep.Changed = append(rep.Changed, FileChange{Path: sf.Path, Changes: changes})
		f.Log.Info().Str("path", sf.Path).Strs("changes", changes).Bool("dry_run", f.DryRun).Msg("frontmatter fixed")
	}
	return rep, nil
}

// FixFile rewrites path when something changed, unless DryRun is set.
func (f *Fixer) FixFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, changes, err := Fix(raw)
	if err != nil || len(changes) == 0 || f.DryRun {
		return changes, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return changes, os.WriteFile(path, out, st.Mode().Perm())
}

// Fix returns the rewritten file and a description of each change. Input
// without frontmatter, or already canonical, comes back unchanged.
func Fix(raw []byte) ([]byte, []string, error) {
	raw = bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))

	var doc yaml.Node
	body, err := frontmatter.Parse(bytes.NewReader(raw), &doc, nodeFormat)
	if err != nil {
		return raw, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return raw, nil, nil
	}

	changes := fixMapping(doc.Content[0])
	if len(changes) == 0 {
		return raw, nil, nil
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return raw, nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return raw, nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	buf.WriteString("---\n")
	if rest := bytes.TrimLeft(body, "\n"); len(rest) > 0 {
		buf.WriteString("\n")
		buf.Write(rest)
	}
	return buf.Bytes(), changes, nil
}

var digits = regexp.MustCompile(`\d+`)

func fixMapping(m *yaml.Node) []string {
	var changes []string

	if v := value(m, "category"); v != nil && v.Kind == yaml.ScalarNode {
		if c := ingest.NormalizeCategory(v.Value); c != v.Value {
			changes = append(changes, fmt.Sprintf("category %q -> %q", v.Value, c))
			setString(v, c)
		}
	}

	if v := value(m, "author"); v != nil && v.Kind == yaml.MappingNode {
		if name := value(v, "name"); name != nil && name.Kind == yaml.ScalarNode && strings.TrimSpace(name.Value) != "" {
			changes = append(changes, fmt.Sprintf("author object -> %q", name.Value))
			*v = yaml.Node{}
			setString(v, strings.TrimSpace(name.Value))
		}
	}

	if c := rename(m, "publishDate", "date"); c != "" {
		changes = append(changes, c)
	}

	if c := rename(m, "readTime", "readingTime"); c != "" {
		changes = append(changes, c)
		if v := value(m, "readingTime"); v != nil && v.Kind == yaml.ScalarNode {
			if n := digits.FindString(v.Value); n != "" && n != v.Value {
				v.Value, v.Tag, v.Style = n, "!!int", 0
			}
		}
	}
	return changes
}

// rename moves key from to key to. When to already exists, from is dropped.
func rename(m *yaml.Node, from, to string) string {
	i := keyIndex(m, from)
	if i < 0 {
		return ""
	}
	if keyIndex(m, to) >= 0 {
		m.Content = append(m.Content[:i], m.Content[i+2:]...)
		return fmt.Sprintf("dropped %s (%s present)", from, to)
	}
	m.Content[i].Value = to
	return fmt.Sprintf("%s -> %s", from, to)
}

func keyIndex(m *yaml.Node, key string) int {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return i
		}
	}
	return -1
}

func value(m *yaml.Node, key string) *yaml.Node {
	if i := keyIndex(m, key); i >= 0 {
		return m.Content[i+1]
	}
	return nil
}

func setString(n *yaml.Node, s string) {
	n.Kind = yaml.ScalarNode
	n.Tag = "!!str"
	n.Value = s
	n.Style = 0
	n.Content = nil
}
