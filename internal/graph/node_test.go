package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_RoundTripKeepsUnknownFieldsAndOrder(t *testing.T) {
	in := `{"title":"Page","uid":"p1","children":[{"string":"hello","uid":"b1","create-time":1700000000000,"props":{"a":[1,2]}}],"edit-time":1}`

	var n Node
	require.NoError(t, json.Unmarshal([]byte(in), &n))

	assert.Equal(t, "Page", n.Title())
	require.Len(t, n.Children, 1)
	text, ok := n.Children[0].String()
	require.True(t, ok)
	assert.Equal(t, "hello", text)

	out, err := json.Marshal(&n)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
	assert.Equal(t, in, string(out))
}

func TestNode_SetStringKeepsPosition(t *testing.T) {
	var n Node
	require.NoError(t, json.Unmarshal([]byte(`{"uid":"b1","string":"old","heading":2}`), &n))

	n.SetString("new <url> & more")

	out, err := marshalNoEscape(&n)
	require.NoError(t, err)
	assert.Equal(t, `{"uid":"b1","string":"new <url> & more","heading":2}`, string(out))
}

func TestNode_NewFieldsAppended(t *testing.T) {
	var n Node
	require.NoError(t, json.Unmarshal([]byte(`{"uid":"b1"}`), &n))

	_, ok := n.String()
	assert.False(t, ok)

	n.SetString("x")
	n.Children = []*Node{NewNode("y")}

	out, err := json.Marshal(&n)
	require.NoError(t, err)
	assert.Equal(t, `{"uid":"b1","string":"x","children":[{"string":"y"}]}`, string(out))
}

func TestNode_NonStringTextKeptRaw(t *testing.T) {
	in := `{"string":null,"children":null,"n":1}`

	var n Node
	require.NoError(t, json.Unmarshal([]byte(in), &n))
	assert.Nil(t, n.Text)
	assert.Nil(t, n.Children)

	raw, ok := n.Field("string")
	require.True(t, ok)
	assert.Equal(t, "null", string(raw))

	out, err := json.Marshal(&n)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestNode_UnmarshalRejectsNonObject(t *testing.T) {
	var n Node
	require.Error(t, json.Unmarshal([]byte(`[1,2]`), &n))
	require.Error(t, json.Unmarshal([]byte(`"text"`), &n))
}

func TestNode_TitleMissingOrInvalid(t *testing.T) {
	var n Node
	require.NoError(t, json.Unmarshal([]byte(`{"title":5}`), &n))
	assert.Equal(t, "", n.Title())
	assert.Equal(t, "", NewNode("block").Title())
}
