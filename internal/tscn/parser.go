package tscn

import (
	"strings"
)

// LineKind is the category a source line is classified into.
type LineKind int

const (
	LineSkip LineKind = iota
	LineHeader
	LineAssignment
	LineContinuation
	LineCloser
	LineMapSeparator
)

func (k LineKind) String() string {
	switch k {
	case LineHeader:
		return "header"
	case LineAssignment:
		return "assignment"
	case LineContinuation:
		return "continuation"
	case LineCloser:
		return "closer"
	case LineMapSeparator:
		return "map-separator"
	default:
		return "skip"
	}
}

// ClassifyLine assigns a trimmed line to exactly one category. Blank lines,
// ';' comments and lines matching no construct are LineSkip.
func ClassifyLine(line string) LineKind {
	if line == "" || line[0] == ';' {
		return LineSkip
	}
	if hasBorders(line, '[', ']') {
		return LineHeader
	}

	compact := strings.Join(strings.Fields(line), "")
	switch compact {
	case "}", "}]", "},":
		return LineCloser
	case "},{":
		return LineMapSeparator
	}

	if line[0] == '"' {
		if end := closingQuote(line); end > 0 && strings.HasPrefix(strings.TrimSpace(line[end+1:]), ":") {
			return LineContinuation
		}
	}
	if strings.Contains(line, "=") {
		return LineAssignment
	}
	return LineSkip
}

// closingQuote returns the index of the quote closing the string that opens
// line, or -1.
func closingQuote(line string) int {
	for i := 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

// splitAssignment splits "key = value" on the first '='.
func splitAssignment(line string) (string, string) {
	key, value, _ := strings.Cut(line, "=")
	return strings.TrimSpace(key), strings.TrimSpace(value)
}

// splitContinuation splits `"key": value,` into its key and value.
func splitContinuation(line string) (string, string) {
	end := closingQuote(line)
	key := line[1:end]
	rest := strings.TrimSpace(line[end+1:])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	rest = strings.TrimSpace(strings.TrimSuffix(rest, ","))
	return key, rest
}

// target is where assignment lines of the active block are written.
type target struct {
	props     *Properties
	blockType string
	lastKey   string
}

// parseState is the mutable state of one file's line pass.
type parseState struct {
	scene   *Scene
	builder *builder
	active  *target
	line    int
}

// parseText runs the line pass over text. External resources are recorded
// but not resolved.
func parseText(text string) (*Scene, error) {
	scene := newScene()
	st := &parseState{scene: scene, builder: newBuilder(scene)}

	for _, raw := range strings.Split(text, "\n") {
		st.line++
		line := strings.TrimSpace(raw)

		switch ClassifyLine(line) {
		case LineHeader:
			blk, _ := ParseHeader(line)
			if err := st.header(blk); err != nil {
				return nil, err
			}
		case LineAssignment:
			st.assign(splitAssignment(line))
		case LineContinuation:
			st.continuation(splitContinuation(line))
		case LineMapSeparator:
			st.nextMap()
		}
	}
	return scene, nil
}

func (st *parseState) header(blk Block) error {
	st.active = nil

	switch blk.Kind {
	case BlockScene:
		st.scene.Kind = KindScene
		st.scene.LoadSteps = blk.LoadSteps
		st.scene.Format = blk.Format

	case BlockResource:
		if blk.Keyword == "gd_resource" {
			st.scene.Kind = KindResourceFile
			st.scene.ResourceType = blk.Type
			st.scene.LoadSteps = blk.LoadSteps
			st.scene.Format = blk.Format
		}
		st.active = &target{props: st.scene.Properties, blockType: st.scene.ResourceType}

	case BlockSubResource:
		res := &SubResource{ID: blk.ID, Type: blk.Type, Properties: NewProperties()}
		st.scene.SubResources[blk.ID] = res
		st.active = &target{props: res.Properties, blockType: blk.Type}

	case BlockExtResource:
		st.scene.ExtResources[blk.ID] = &ExtResource{ID: blk.ID, Type: blk.Type, Path: blk.Path}

	case BlockNode:
		node, err := st.builder.addNode(blk, st.line)
		if err != nil {
			return err
		}
		st.active = &target{props: node.Properties, blockType: node.Type}

	case BlockConnection:
		st.scene.Connections = append(st.scene.Connections, Connection{
			Signal: blk.Signal,
			From:   blk.From,
			To:     blk.To,
			Method: blk.Method,
			Flags:  blk.Flags,
			Binds:  blk.Binds,
		})
	}
	return nil
}

func (st *parseState) assign(key, literal string) {
	if st.active == nil || key == "" {
		return
	}
	st.active.props.Insert(key, ParseValue(literal, st.active.blockType))
	st.active.lastKey = key
}

// continuation writes into the map opened by the last assignment: the map
// itself, or the last map of a map sequence.
func (st *parseState) continuation(key, literal string) {
	m := st.openMap()
	if m == nil {
		return
	}
	m.Set(key, ParseValue(literal, st.active.blockType))
}

// nextMap starts a new element in an open map sequence.
func (st *parseState) nextMap() {
	if st.active == nil || st.active.lastKey == "" {
		return
	}
	v, ok := st.active.props.Get(st.active.lastKey)
	if !ok || v.Kind != KindMapArray {
		return
	}
	v.Maps = append(v.Maps, NewProperties())
	st.active.props.Insert(st.active.lastKey, v)
}

func (st *parseState) openMap() *Properties {
	if st.active == nil || st.active.lastKey == "" {
		return nil
	}
	v, ok := st.active.props.Get(st.active.lastKey)
	if !ok {
		return nil
	}
	switch v.Kind {
	case KindMap:
		return v.Map
	case KindMapArray:
		if len(v.Maps) > 0 {
			return v.Maps[len(v.Maps)-1]
		}
	}
	return nil
}
