package tscn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderNode(t *testing.T) {
	b, ok := ParseHeader(`[node name="Player" parent="." instance=ExtResource( 1 )]`)
	require.True(t, ok)
	assert.Equal(t, BlockNode, b.Kind)
	assert.Equal(t, "Player", b.Name)
	assert.Equal(t, ".", b.Parent)
	assert.True(t, b.HasParent)
	assert.Equal(t, 1, b.Instance)
	assert.Empty(t, b.Type)
}

func TestParseHeaderNodeWithoutParent(t *testing.T) {
	b, ok := ParseHeader(`[node name="Main" type="Node2D"]`)
	require.True(t, ok)
	assert.Equal(t, "Node2D", b.Type)
	assert.False(t, b.HasParent)
}

func TestParseHeaderGroups(t *testing.T) {
	b, ok := ParseHeader(`[node name="Ground" type="StaticBody2D" parent="." groups=[ "solid", "world" ]]`)
	require.True(t, ok)
	assert.Equal(t, []string{"solid", "world"}, b.Groups)
}

func TestParseHeaderQuotedSpaces(t *testing.T) {
	b, ok := ParseHeader(`[node name="Simple Background" type="Sprite" parent="Level 1/Layer"]`)
	require.True(t, ok)
	assert.Equal(t, "Simple Background", b.Name)
	assert.Equal(t, "Level 1/Layer", b.Parent)
}

func TestParseHeaderResources(t *testing.T) {
	ext, ok := ParseHeader(`[ext_resource path="res://icon.png" type="Texture" id=2]`)
	require.True(t, ok)
	assert.Equal(t, BlockExtResource, ext.Kind)
	assert.Equal(t, "res://icon.png", ext.Path)
	assert.Equal(t, "Texture", ext.Type)
	assert.Equal(t, 2, ext.ID)

	sub, ok := ParseHeader(`[sub_resource type="RectangleShape2D" id=1]`)
	require.True(t, ok)
	assert.Equal(t, BlockSubResource, sub.Kind)
	assert.Equal(t, 1, sub.ID)

	scene, ok := ParseHeader(`[gd_scene load_steps=6 format=2]`)
	require.True(t, ok)
	assert.Equal(t, BlockScene, scene.Kind)
	assert.Equal(t, 6, scene.LoadSteps)
	assert.Equal(t, 2, scene.Format)

	res, ok := ParseHeader(`[gd_resource type="Curve" format=2]`)
	require.True(t, ok)
	assert.Equal(t, BlockResource, res.Kind)
	assert.Equal(t, "gd_resource", res.Keyword)
	assert.Equal(t, "Curve", res.Type)

	section, ok := ParseHeader(`[resource]`)
	require.True(t, ok)
	assert.Equal(t, BlockResource, section.Kind)
	assert.Empty(t, section.Attrs)
}

func TestParseHeaderConnection(t *testing.T) {
	b, ok := ParseHeader(`[connection signal="pressed" from="UI/Button" to="." method="_on_pressed" binds=[ 1, "x" ] flags=3]`)
	require.True(t, ok)
	assert.Equal(t, BlockConnection, b.Kind)
	assert.Equal(t, "pressed", b.Signal)
	assert.Equal(t, "UI/Button", b.From)
	assert.Equal(t, ".", b.To)
	assert.Equal(t, "_on_pressed", b.Method)
	assert.Equal(t, 3, b.Flags)
	assert.Equal(t, KindArray, b.Binds.Kind)
	assert.Len(t, b.Binds.Items, 2)
}

func TestParseHeaderUnknownKeyword(t *testing.T) {
	b, ok := ParseHeader(`[editable path="Player"]`)
	require.True(t, ok)
	assert.Equal(t, BlockUnknown, b.Kind)
	v, ok := b.Attr("path")
	require.True(t, ok)
	assert.Equal(t, "Player", v.Str)
}

func TestParseHeaderRejectsNonHeaders(t *testing.T) {
	for _, line := range []string{"", "position = Vector2( 0, 0 )", "[node", "node]"} {
		_, ok := ParseHeader(line)
		assert.False(t, ok, "line: %q", line)
	}
}

func TestParseAttributes(t *testing.T) {
	attrs := ParseAttributes(`a=1  b="two words" c=Vector2( 1, 2 ) stray d=`)
	require.Len(t, attrs, 4)
	assert.Equal(t, "a", attrs[0].Key)
	assert.Equal(t, int64(1), attrs[0].Value.Int)
	assert.Equal(t, "two words", attrs[1].Value.Str)
	assert.Equal(t, KindVector2, attrs[2].Value.Kind)
	assert.Equal(t, "d", attrs[3].Key)
	assert.Equal(t, KindRaw, attrs[3].Value.Kind)
}
