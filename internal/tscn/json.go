package tscn

import (
	"encoding/json"
	"math"
)

// MarshalJSON encodes scalars, strings and sequences as plain JSON. Engine
// types and references are encoded as objects carrying a "type" tag so they
// stay distinguishable from maps.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindInt:
		return json.Marshal(v.Int)
	case KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return json.Marshal(v.Raw)
		}
		return json.Marshal(v.Float)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindString:
		return json.Marshal(v.Str)
	case KindVector2:
		return json.Marshal(taggedVector{Type: "Vector2", X: v.Vector.X, Y: v.Vector.Y})
	case KindRect2:
		return json.Marshal(taggedRect{Type: "Rect2", Position: v.Rect.Position, Size: v.Rect.Size})
	case KindIntArray:
		return json.Marshal(nonNil(v.Ints))
	case KindFloatArray:
		return json.Marshal(nonNil(v.Floats))
	case KindVector2Array:
		return json.Marshal(nonNil(v.Vectors))
	case KindCurve:
		var points []ControlPoint
		if v.Curve != nil {
			points = v.Curve.Points
		}
		return json.Marshal(taggedCurve{Type: "Curve", Points: nonNil(points)})
	case KindMap:
		return v.Map.MarshalJSON()
	case KindMapArray:
		return json.Marshal(nonNil(v.Maps))
	case KindSubResource:
		return json.Marshal(taggedRef{Type: "SubResource", ID: v.Ref})
	case KindExtResource:
		return json.Marshal(taggedRef{Type: "ExtResource", ID: v.Ref})
	case KindArray:
		return json.Marshal(nonNil(v.Items))
	default:
		return json.Marshal(taggedRaw{Type: "Raw", Raw: v.Raw})
	}
}

type taggedVector struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type taggedRect struct {
	Type     string  `json:"type"`
	Position Vector2 `json:"position"`
	Size     Vector2 `json:"size"`
}

type taggedCurve struct {
	Type   string         `json:"type"`
	Points []ControlPoint `json:"points"`
}

type taggedRef struct {
	Type string `json:"type"`
	ID   int    `json:"id"`
}

type taggedRaw struct {
	Type string `json:"type"`
	Raw  string `json:"raw"`
}

// nonNil makes empty sequences encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
