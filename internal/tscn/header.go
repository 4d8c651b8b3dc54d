package tscn

import "strings"

// BlockKind classifies a bracketed header line.
type BlockKind string

const (
	BlockScene       BlockKind = "gd_scene"
	BlockResource    BlockKind = "resource"
	BlockSubResource BlockKind = "sub_resource"
	BlockExtResource BlockKind = "ext_resource"
	BlockNode        BlockKind = "node"
	BlockConnection  BlockKind = "connection"
	BlockUnknown     BlockKind = "unknown"
)

// Attr is a key=value pair from a header line.
type Attr struct {
	Key   string
	Value Value
}

// Block is a folded header. Which fields are meaningful depends on Kind.
type Block struct {
	Kind    BlockKind
	Keyword string // the header's first word as written
	Attrs   []Attr // every attribute in order, including unknown keys

	// gd_scene, gd_resource
	LoadSteps int
	Format    int

	// gd_resource, sub_resource, ext_resource, node
	Type string

	// sub_resource, ext_resource
	ID int

	// ext_resource
	Path string

	// node
	Name      string
	Parent    string
	HasParent bool
	Instance  int // ext-resource id of an instanced scene, 0 when absent
	Groups    []string

	// connection
	Signal string
	From   string
	To     string
	Method string
	Flags  int
	Binds  Value
}

// Attr looks up a header attribute by key.
func (b Block) Attr(key string) (Value, bool) {
	for _, a := range b.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return Value{}, false
}

// ParseHeader folds a "[keyword attr=value ...]" line into a Block. It
// reports false if line is not a header.
func ParseHeader(line string) (Block, bool) {
	line = strings.TrimSpace(line)
	if !hasBorders(line, '[', ']') {
		return Block{}, false
	}

	contents := strings.TrimSpace(line[1 : len(line)-1])
	keyword, rest, _ := strings.Cut(contents, " ")

	b := Block{
		Kind:    blockKind(keyword),
		Keyword: keyword,
		Attrs:   ParseAttributes(rest),
	}
	for _, a := range b.Attrs {
		b.apply(a)
	}
	return b, true
}

func blockKind(keyword string) BlockKind {
	switch keyword {
	case "gd_scene":
		return BlockScene
	case "gd_resource", "resource":
		return BlockResource
	case "sub_resource":
		return BlockSubResource
	case "ext_resource":
		return BlockExtResource
	case "node":
		return BlockNode
	case "connection":
		return BlockConnection
	default:
		return BlockUnknown
	}
}

// apply folds one attribute into the block. Unknown keys and values of an
// unexpected kind are ignored.
func (b *Block) apply(a Attr) {
	v := a.Value
	switch a.Key {
	case "load_steps":
		b.LoadSteps = intOf(v)
	case "format":
		b.Format = intOf(v)
	case "type":
		b.Type = strOf(v)
	case "id":
		b.ID = intOf(v)
	case "path":
		b.Path = strOf(v)
	case "name":
		b.Name = strOf(v)
	case "parent":
		b.Parent = strOf(v)
		b.HasParent = true
	case "instance":
		if v.Kind == KindExtResource {
			b.Instance = v.Ref
		}
	case "groups":
		b.Groups = v.Strings()
	case "signal":
		b.Signal = strOf(v)
	case "from":
		b.From = strOf(v)
	case "to":
		b.To = strOf(v)
	case "method":
		b.Method = strOf(v)
	case "flags":
		b.Flags = intOf(v)
	case "binds":
		b.Binds = v
	}
}

// ParseAttributes tokenizes a space-separated "key=value" list. Values may be
// quoted strings containing spaces or parenthesized constructors such as
// ExtResource( 1 ). Tokens without '=' are ignored.
func ParseAttributes(s string) []Attr {
	var attrs []Attr
	for _, tok := range splitTopLevel(s, ' ') {
		if tok == "" {
			continue
		}
		key, raw, ok := strings.Cut(tok, "=")
		if !ok || key == "" {
			continue
		}
		attrs = append(attrs, Attr{Key: key, Value: ParseValue(raw, "")})
	}
	return attrs
}

func intOf(v Value) int {
	if v.Kind == KindInt {
		return int(v.Int)
	}
	return 0
}

func strOf(v Value) string {
	if v.Kind == KindString {
		return v.Str
	}
	return ""
}
