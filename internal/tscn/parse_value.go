package tscn

import (
	"regexp"
	"strconv"
	"strings"
)

// CurveType is the block type whose bracketed arrays are curve point data.
const CurveType = "Curve"

// curveStride is the number of array elements serialized per curve point:
// position, left tangent, right tangent, left mode, right mode.
const curveStride = 5

const number = `[-+]?\d+(?:\.\d+)?(?:[eE][-+]?\d+)?`

var (
	reVector      = regexp.MustCompile(`^Vector2\(\s*(` + number + `)\s*,\s*(` + number + `)\s*\)$`)
	reVectorPool  = regexp.MustCompile(`^PoolVector2Array\((.*)\)$`)
	reRect        = regexp.MustCompile(`^Rect2\((.*)\)$`)
	reIntPool     = regexp.MustCompile(`^PoolIntArray\((.*)\)$`)
	reRealPool    = regexp.MustCompile(`^PoolRealArray\((.*)\)$`)
	reSubResource = regexp.MustCompile(`^SubResource\(\s*(\d+)\s*\)$`)
	reExtResource = regexp.MustCompile(`^ExtResource\(\s*(\d+)\s*\)$`)
)

// ParseValue converts a trimmed right-hand-side literal into a typed Value.
// blockType is the declared type of the enclosing block; it decides whether a
// bracketed array holds curve points. ParseValue never fails: literals it
// does not recognize come back as KindRaw with the text preserved.
func ParseValue(literal, blockType string) Value {
	s := strings.TrimSpace(literal)

	if hasBorders(s, '"', '"') && closingQuote(s) == len(s)-1 {
		return Value{Kind: KindString, Str: s[1 : len(s)-1], Raw: s}
	}

	if hasBorders(s, '[', ']') && blockType == CurveType {
		if v, ok := parseCurve(s); ok {
			return v
		}
	}

	compact := strings.Join(strings.Fields(s), "")
	if compact == "[{" {
		return Value{Kind: KindMapArray, Maps: []*Properties{NewProperties()}, Raw: s}
	}
	if compact == "{" {
		return Value{Kind: KindMap, Map: NewProperties(), Raw: s}
	}

	switch s {
	case "true":
		return Value{Kind: KindBool, Bool: true, Raw: s}
	case "false":
		return Value{Kind: KindBool, Bool: false, Raw: s}
	}

	if m := reVector.FindStringSubmatch(s); m != nil {
		x, errX := strconv.ParseFloat(m[1], 64)
		y, errY := strconv.ParseFloat(m[2], 64)
		if errX == nil && errY == nil {
			return Value{Kind: KindVector2, Vector: Vector2{X: x, Y: y}, Raw: s}
		}
		return rawValue(s)
	}

	if m := reVectorPool.FindStringSubmatch(s); m != nil {
		floats, ok := parseFloats(m[1])
		if !ok {
			return rawValue(s)
		}
		vectors := make([]Vector2, 0, len(floats)/2)
		for i := 0; i+1 < len(floats); i += 2 {
			vectors = append(vectors, Vector2{X: floats[i], Y: floats[i+1]})
		}
		return Value{Kind: KindVector2Array, Vectors: vectors, Raw: s}
	}

	if m := reRect.FindStringSubmatch(s); m != nil {
		f, ok := parseFloats(m[1])
		if !ok || len(f) != 4 {
			return rawValue(s)
		}
		return Value{
			Kind: KindRect2,
			Rect: Rect2{Position: Vector2{X: f[0], Y: f[1]}, Size: Vector2{X: f[2], Y: f[3]}},
			Raw:  s,
		}
	}

	if m := reIntPool.FindStringSubmatch(s); m != nil {
		ints, ok := parseInts(m[1])
		if !ok {
			return rawValue(s)
		}
		return Value{Kind: KindIntArray, Ints: ints, Raw: s}
	}

	if m := reRealPool.FindStringSubmatch(s); m != nil {
		floats, ok := parseFloats(m[1])
		if !ok {
			return rawValue(s)
		}
		return Value{Kind: KindFloatArray, Floats: floats, Raw: s}
	}

	if m := reSubResource.FindStringSubmatch(s); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			return Value{Kind: KindSubResource, Ref: id, Raw: s}
		}
		return rawValue(s)
	}

	if m := reExtResource.FindStringSubmatch(s); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil {
			return Value{Kind: KindExtResource, Ref: id, Raw: s}
		}
		return rawValue(s)
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Value{Kind: KindInt, Int: n, Raw: s}
	}

	if f, ok := parseFloat(s); ok {
		return Value{Kind: KindFloat, Float: f, Raw: s}
	}

	if hasBorders(s, '[', ']') {
		elems := splitTopLevel(s[1:len(s)-1], ',')
		items := make([]Value, 0, len(elems))
		for _, e := range elems {
			items = append(items, ParseValue(e, ""))
		}
		return Value{Kind: KindArray, Items: items, Raw: s}
	}

	return rawValue(s)
}

// parseCurve reads groups of curveStride elements into control points.
// Incomplete trailing groups are dropped.
func parseCurve(s string) (Value, bool) {
	elems := splitTopLevel(s[1:len(s)-1], ',')
	curve := &Curve{}

	for i := 0; i+curveStride <= len(elems); i += curveStride {
		pos := ParseValue(elems[i], "")
		if pos.Kind != KindVector2 {
			return Value{}, false
		}
		left, okL := ParseValue(elems[i+1], "").Number()
		right, okR := ParseValue(elems[i+2], "").Number()
		if !okL || !okR {
			return Value{}, false
		}
		curve.AddPoint(ControlPoint{
			X:            pos.Vector.X,
			Y:            pos.Vector.Y,
			LeftTangent:  left,
			RightTangent: right,
		})
	}

	return Value{Kind: KindCurve, Curve: curve, Raw: s}, true
}

// parseFloat accepts decimal floats only. strconv.ParseFloat would also take
// hex floats and spellings such as "Inf"; the format writes "inf", "-inf" and
// "nan", which are kept.
func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	switch s {
	case "inf", "-inf", "nan":
	default:
		for i := 0; i < len(s); i++ {
			c := s[i]
			if (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' && c != 'e' && c != 'E' {
				return 0, false
			}
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseFloats(list string) ([]float64, bool) {
	elems := splitTopLevel(list, ',')
	out := make([]float64, 0, len(elems))
	for _, e := range elems {
		f, ok := parseFloat(e)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	return out, true
}

func parseInts(list string) ([]int64, bool) {
	elems := splitTopLevel(list, ',')
	out := make([]int64, 0, len(elems))
	for _, e := range elems {
		n, err := strconv.ParseInt(e, 10, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}
