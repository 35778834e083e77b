// Package graph reads and writes the exported document tree: a JSON array
// of pages, each a node with optional "string" text and nested "children".
//
// Only "string" and "children" are interpreted. Every other field is kept
// as raw JSON and written back in its original position.
package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	keyString   = "string"
	keyChildren = "children"
)

// Node is a page or a block.
type Node struct {
	// Text is the node's "string" field; nil when absent.
	Text *string
	// Children are the nested blocks in their original order.
	Children []*Node

	fields map[string]json.RawMessage
	order  []string
}

// NewNode returns a node with text and no other fields.
func NewNode(text string, children ...*Node) *Node {
	return &Node{Text: &text, Children: children}
}

// String returns the node text.
func (n *Node) String() (string, bool) {
	if n.Text == nil {
		return "", false
	}
	return *n.Text, true
}

// SetString replaces the node text.
func (n *Node) SetString(s string) {
	n.Text = &s
}

// Title returns the page title, or "" for blocks.
func (n *Node) Title() string {
	raw, ok := n.fields["title"]
	if !ok {
		return ""
	}
	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		return ""
	}
	return title
}

// Field returns the raw value of a field other than "string" and "children".
func (n *Node) Field(key string) (json.RawMessage, bool) {
	raw, ok := n.fields[key]
	return raw, ok
}

func (n *Node) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("graph node: expected object, got %v", tok)
	}

	*n = Node{fields: make(map[string]json.RawMessage)}
	seen := make(map[string]bool)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("graph node: expected field name")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("graph node field %q: %w", key, err)
		}
		if !seen[key] {
			seen[key] = true
			n.order = append(n.order, key)
		}

		switch {
		case key == keyString && firstByte(raw) == '"':
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("graph node field %q: %w", key, err)
			}
			n.Text = &s
			delete(n.fields, key)
		case key == keyChildren && firstByte(raw) == '[':
			var children []*Node
			if err := json.Unmarshal(raw, &children); err != nil {
				return fmt.Errorf("graph node children: %w", err)
			}
			n.Children = children
			delete(n.fields, key)
		default:
			n.fields[key] = raw
		}
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	written := 0
	write := func(key string, value []byte) {
		if written > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		written++
	}

	emitted := make(map[string]bool)
	for _, key := range n.order {
		v, ok, err := n.value(key)
		if err != nil {
			return nil, err
		}
		if ok {
			write(key, v)
			emitted[key] = true
		}
	}

	// fields set after decoding go last
	for _, key := range []string{keyString, keyChildren} {
		if emitted[key] {
			continue
		}
		v, ok, err := n.value(key)
		if err != nil {
			return nil, err
		}
		if ok {
			write(key, v)
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (n *Node) value(key string) ([]byte, bool, error) {
	switch key {
	case keyString:
		if n.Text != nil {
			b, err := marshalNoEscape(*n.Text)
			return b, true, err
		}
	case keyChildren:
		if n.Children != nil {
			b, err := marshalNoEscape(n.Children)
			return b, true, err
		}
	}
	raw, ok := n.fields[key]
	return raw, ok, nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func firstByte(raw json.RawMessage) byte {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
