// Package frontmatter implements the YAML frontmatter codec: splitting raw
// note text into (metadata, body) and reassembling the two back into stored
// text. Metadata keys keep their insertion order so that serializing an
// unmodified note reproduces the original block.
package frontmatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/starford/laguz/internal/apperr"
)

const delimiter = "---"

// Map is an insertion-ordered metadata mapping. Nested mappings are
// themselves *Map so ordering survives arbitrarily deep structures.
type Map struct {
	om *orderedmap.OrderedMap[string, any]
}

// NewMap returns an empty metadata mapping.
func NewMap() *Map {
	return &Map{om: orderedmap.New[string, any]()}
}

// FromMap builds a Map from a plain Go map, such as a decoded JSON object.
// JSON objects carry no ordering, so keys are canonicalized to sorted order.
// Nested map[string]any values are converted recursively.
func FromMap(raw map[string]any) *Map {
	m := NewMap()
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.Set(k, convertValue(raw[k]))
	}
	return m
}

func convertValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = convertValue(item)
		}
		return out
	default:
		return v
	}
}

// Set stores value under key, appending the key if it is new.
func (m *Map) Set(key string, value any) {
	m.om.Set(key, value)
}

// Get returns the value for key.
func (m *Map) Get(key string) (any, bool) {
	return m.om.Get(key)
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) bool {
	_, present := m.om.Delete(key)
	return present
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.om.Len()
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, m.om.Len())
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clone returns a shallow copy preserving key order. Clone of nil is an
// empty Map.
func (m *Map) Clone() *Map {
	out := NewMap()
	if m == nil {
		return out
	}
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		out.om.Set(pair.Key, pair.Value)
	}
	return out
}

// MarshalJSON emits the mapping as a JSON object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil || m.om == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m.om)
}

// UnmarshalJSON decodes a JSON object into the mapping. JSON objects carry
// no ordering, so keys land in sorted order as with FromMap.
func (m *Map) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = *FromMap(raw)
	return nil
}

// Parse splits raw note text into metadata and body. When no leading
// delimiter is present the metadata is empty and the body is the full text
// unchanged. A block that is present but not valid YAML, not a mapping, or
// never closed fails with apperr.ErrMetadataParse.
func Parse(data []byte) (*Map, string, error) {
	if !hasLeadingDelimiter(data) {
		return NewMap(), string(data), nil
	}

	first := bytes.IndexByte(data, '\n')
	if first < 0 {
		return nil, "", fmt.Errorf("%w: frontmatter block is never closed", apperr.ErrMetadataParse)
	}
	rest := data[first+1:]

	off := 0
	for off <= len(rest) {
		if off == len(rest) {
			return nil, "", fmt.Errorf("%w: frontmatter block is never closed", apperr.ErrMetadataParse)
		}
		line, next := nextLine(rest, off)
		if isDelimiterLine(line) {
			meta, err := decodeBlock(rest[:off])
			if err != nil {
				return nil, "", err
			}
			return meta, string(rest[next:]), nil
		}
		off = next
	}
	return nil, "", fmt.Errorf("%w: frontmatter block is never closed", apperr.ErrMetadataParse)
}

// BlockExtent returns the number of leading raw lines occupied by the
// frontmatter block, both delimiter lines included. Zero when data carries
// no block or the block is unclosed.
func BlockExtent(data []byte) int {
	if !hasLeadingDelimiter(data) {
		return 0
	}
	first := bytes.IndexByte(data, '\n')
	if first < 0 {
		return 0
	}
	rest := data[first+1:]
	lines := 1
	off := 0
	for off < len(rest) {
		line, next := nextLine(rest, off)
		lines++
		if isDelimiterLine(line) {
			return lines
		}
		off = next
	}
	return 0
}

// Serialize reassembles metadata and body into stored note text. The
// delimiter-wrapped YAML block is emitted only when metadata is non-empty;
// key order follows the mapping's insertion order.
func Serialize(meta *Map, body string) ([]byte, error) {
	if meta.Len() == 0 {
		return []byte(body), nil
	}
	node, err := valueToNode(meta)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: encode metadata: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("frontmatter: encode metadata: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("frontmatter: encode metadata: %w", err)
	}
	buf.WriteString(delimiter + "\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// Merge overlays incoming onto existing: incoming keys overwrite same-named
// existing keys, existing keys absent from incoming are retained. Neither
// input is mutated.
func Merge(existing, incoming *Map) *Map {
	out := existing.Clone()
	if incoming == nil {
		return out
	}
	for pair := incoming.om.Oldest(); pair != nil; pair = pair.Next() {
		out.Set(pair.Key, pair.Value)
	}
	return out
}

func hasLeadingDelimiter(data []byte) bool {
	if !bytes.HasPrefix(data, []byte(delimiter)) {
		return false
	}
	rest := data[len(delimiter):]
	return len(rest) == 0 || rest[0] == '\n' || bytes.HasPrefix(rest, []byte("\r\n"))
}

// nextLine returns the line starting at off (without terminator) and the
// offset of the following line.
func nextLine(data []byte, off int) ([]byte, int) {
	end := bytes.IndexByte(data[off:], '\n')
	if end < 0 {
		return data[off:], len(data)
	}
	return data[off : off+end], off + end + 1
}

func isDelimiterLine(line []byte) bool {
	return string(bytes.TrimSuffix(line, []byte("\r"))) == delimiter
}

func decodeBlock(block []byte) (*Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMetadataParse, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return NewMap(), nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: frontmatter is not a mapping", apperr.ErrMetadataParse)
	}
	v, err := nodeToValue(root, map[*yaml.Node]bool{})
	if err != nil {
		return nil, err
	}
	return v.(*Map), nil
}

// nodeToValue converts a YAML node into a Map, slice, or scalar, keeping
// mapping key order. seen holds the nodes on the current descent path:
// an anchor may be referenced many times, but a node aliasing back into
// its own subtree would recurse forever, so re-entry is a parse error.
func nodeToValue(n *yaml.Node, seen map[*yaml.Node]bool) (any, error) {
	if seen[n] {
		return nil, fmt.Errorf("%w: recursive alias in frontmatter", apperr.ErrMetadataParse)
	}
	seen[n] = true
	defer delete(seen, n)

	switch n.Kind {
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("%w: %v", apperr.ErrMetadataParse, err)
			}
			val, err := nodeToValue(n.Content[i+1], seen)
			if err != nil {
				return nil, err
			}
			m.Set(key, val)
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeToValue(c, seen)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.AliasNode:
		return nodeToValue(n.Alias, seen)
	default:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrMetadataParse, err)
		}
		return v, nil
	}
}

// valueToNode is the inverse of nodeToValue.
func valueToNode(v any) (*yaml.Node, error) {
	switch t := v.(type) {
	case *Map:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if t != nil {
			for pair := t.om.Oldest(); pair != nil; pair = pair.Next() {
				key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Key}
				val, err := valueToNode(pair.Value)
				if err != nil {
					return nil, err
				}
				n.Content = append(n.Content, key, val)
			}
		}
		return n, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			c, err := valueToNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return nil, err
		}
		return n, nil
	}
}
