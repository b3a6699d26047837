package shape

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInner_Module(t *testing.T) {
	t.Parallel()
	var in Inner[uint32]
	require.NoError(t, json.Unmarshal([]byte(`{"module":{"is_crate":true,"items":[1,2],"is_stripped":true}}`), &in))

	assert.Equal(t, "module", in.Kind)
	assert.Equal(t, []uint32{1, 2}, in.Items)
	assert.True(t, in.IsStripped)

	n := in.Node("demo", Visibility[uint32]{Kind: "public"})
	assert.True(t, n.Module)
	assert.True(t, n.Public)
	assert.Equal(t, []uint32{1, 2}, n.Items)
}

func TestInner_Use(t *testing.T) {
	t.Parallel()
	var in Inner[string]
	require.NoError(t, json.Unmarshal([]byte(`{"use":{"source":"a::B","name":"B","id":"0:4","is_glob":true}}`), &in))

	require.NotNil(t, in.Target)
	assert.Equal(t, "0:4", *in.Target)
	assert.Equal(t, "a::B", in.Source)

	n := in.Node("", Visibility[string]{Kind: "public"})
	assert.True(t, n.Use)
	assert.True(t, n.Glob)
	assert.Equal(t, "B", n.Name)
	assert.Equal(t, "0:4", n.Target)

	var external Inner[string]
	require.NoError(t, json.Unmarshal([]byte(`{"use":{"source":"std::fmt","name":"fmt","id":null,"is_glob":false}}`), &external))
	assert.Nil(t, external.Target)
	assert.False(t, external.Node("", Visibility[string]{Kind: "public"}).Public)
}

func TestInner_Lenient(t *testing.T) {
	t.Parallel()
	var in Inner[uint32]
	require.NoError(t, json.Unmarshal([]byte(`{"struct":{"fields":"unexpected","variants":[3],"kind":{"plain":{}}}}`), &in))
	assert.Equal(t, "struct", in.Kind)
	assert.Nil(t, in.Fields)
	assert.Equal(t, []uint32{3}, in.Children())

	require.NoError(t, json.Unmarshal([]byte(`{"extern_type":null}`), &in))
	assert.Equal(t, "extern_type", in.Kind)
	assert.Nil(t, in.Variants)

	assert.Error(t, json.Unmarshal([]byte(`{}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`{"a":{},"b":{}}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`"module"`), &in))
}

func TestInner_ChildrenOrder(t *testing.T) {
	t.Parallel()
	in := Inner[int]{Items: []int{1}, Variants: []int{2, 3}, Fields: []int{4}}
	assert.Equal(t, []int{1, 2, 3, 4}, in.Children())
}

func TestVisibility(t *testing.T) {
	t.Parallel()
	tests := []struct {
		json   string
		want   string
		public bool
	}{
		{`"public"`, "public", true},
		{`"default"`, "default", false},
		{`"crate"`, "crate", false},
		{`{"restricted":{"parent":7,"path":"crate::inner"}}`, "restricted(crate::inner)", false},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			var v Visibility[uint32]
			require.NoError(t, json.Unmarshal([]byte(tt.json), &v))
			assert.Equal(t, tt.want, v.String())
			assert.Equal(t, tt.public, v.Public())
		})
	}

	var v Visibility[uint32]
	assert.Error(t, json.Unmarshal([]byte(`{"other":{}}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`42`), &v))
}

func TestDeprecationNote(t *testing.T) {
	t.Parallel()
	var d *Deprecation
	assert.Nil(t, d.NoteOrNil())

	note := "gone"
	d = &Deprecation{Note: &note}
	assert.Equal(t, "gone", d.NoteOrNil())
	assert.Nil(t, (&Deprecation{}).NoteOrNil())
	assert.Nil(t, StringOrNil(nil))
}
