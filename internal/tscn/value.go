package tscn

// Kind discriminates the Value tagged union.
type Kind string

const (
	KindInt          Kind = "int"
	KindFloat        Kind = "float"
	KindBool         Kind = "bool"
	KindString       Kind = "string"
	KindVector2      Kind = "vector2"
	KindRect2        Kind = "rect2"
	KindIntArray     Kind = "int_array"
	KindFloatArray   Kind = "float_array"
	KindVector2Array Kind = "vector2_array"
	KindCurve        Kind = "curve"
	KindMap          Kind = "map"
	KindMapArray     Kind = "map_array"
	KindSubResource  Kind = "sub_resource"
	KindExtResource  Kind = "ext_resource"
	KindArray        Kind = "array"
	KindRaw          Kind = "raw"
)

// Vector2 is a 2-D vector.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect2 is an axis-aligned rectangle stored as position and size.
type Rect2 struct {
	Position Vector2 `json:"position"`
	Size     Vector2 `json:"size"`
}

// Value is a parsed literal. Kind determines which typed field is populated.
// Raw always holds the literal text the value was parsed from.
type Value struct {
	Kind    Kind
	Int     int64         // KindInt
	Float   float64       // KindFloat
	Bool    bool          // KindBool
	Str     string        // KindString
	Vector  Vector2       // KindVector2
	Rect    Rect2         // KindRect2
	Ints    []int64       // KindIntArray
	Floats  []float64     // KindFloatArray
	Vectors []Vector2     // KindVector2Array
	Curve   *Curve        // KindCurve
	Map     *Properties   // KindMap
	Maps    []*Properties // KindMapArray
	Ref     int           // KindSubResource, KindExtResource
	Items   []Value       // KindArray
	Raw     string
}

// String returns the original text representation of the value.
func (v Value) String() string { return v.Raw }

// IsRef reports whether v references a sub-resource or external resource.
func (v Value) IsRef() bool {
	return v.Kind == KindSubResource || v.Kind == KindExtResource
}

// Number returns the value as a float64 when it is an int or a float.
func (v Value) Number() (float64, bool) {
	switch v.Kind {
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// Strings returns the string elements of a generic array. Non-string
// elements are skipped.
func (v Value) Strings() []string {
	if v.Kind != KindArray {
		return nil
	}
	out := make([]string, 0, len(v.Items))
	for _, item := range v.Items {
		if item.Kind == KindString {
			out = append(out, item.Str)
		}
	}
	return out
}

func rawValue(s string) Value {
	return Value{Kind: KindRaw, Raw: s}
}
