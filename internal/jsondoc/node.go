// Package jsondoc provides an order-preserving JSON tree with a lossless
// decoder and a deterministic, diff-friendly encoder.
package jsondoc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDuplicateKey is returned when inserting a member whose key already exists.
var ErrDuplicateKey = errors.New("duplicate key")

// Kind identifies the JSON type held by a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value *Node
}

// Node is a JSON value. Objects keep their members in the order they were
// decoded or inserted; numbers keep their original literal.
type Node struct {
	Kind    Kind
	Bool    bool
	Number  json.Number
	Text    string
	Items   []*Node
	Members []Member
}

// NewNull returns a null node.
func NewNull() *Node { return &Node{Kind: KindNull} }

// NewBool returns a bool node.
func NewBool(b bool) *Node { return &Node{Kind: KindBool, Bool: b} }

// NewNumber returns a number node holding the literal n.
func NewNumber(n json.Number) *Node { return &Node{Kind: KindNumber, Number: n} }

// NewString returns a string node.
func NewString(s string) *Node { return &Node{Kind: KindString, Text: s} }

// NewArray returns an array node holding items.
func NewArray(items ...*Node) *Node { return &Node{Kind: KindArray, Items: items} }

// NewObject returns an empty object node.
func NewObject() *Node { return &Node{Kind: KindObject} }

// IsObject reports whether n is a non-nil object.
func (n *Node) IsObject() bool { return n != nil && n.Kind == KindObject }

// IsArray reports whether n is a non-nil array.
func (n *Node) IsArray() bool { return n != nil && n.Kind == KindArray }

// Len returns the number of members or items. Scalars have length 0.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case KindObject:
		return len(n.Members)
	case KindArray:
		return len(n.Items)
	}
	return 0
}

// Index returns the item at i, or nil when n is not an array or i is out of range.
func (n *Node) Index(i int) *Node {
	if !n.IsArray() || i < 0 || i >= len(n.Items) {
		return nil
	}
	return n.Items[i]
}

// Get returns the value stored under key.
func (n *Node) Get(key string) (*Node, bool) {
	if !n.IsObject() {
		return nil, false
	}
	for _, m := range n.Members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// Has reports whether the object has a member named key.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// StringValue returns the text of the member key when it is a string.
func (n *Node) StringValue(key string) (string, bool) {
	v, ok := n.Get(key)
	if !ok || v.Kind != KindString {
		return "", false
	}
	return v.Text, true
}

// Keys returns the member keys in order.
func (n *Node) Keys() []string {
	if !n.IsObject() {
		return nil
	}
	keys := make([]string, len(n.Members))
	for i, m := range n.Members {
		keys[i] = m.Key
	}
	return keys
}

// Insert appends a new member. It never replaces an existing value.
func (n *Node) Insert(key string, value *Node) error {
	if !n.IsObject() {
		return fmt.Errorf("insert %q: node is not an object", key)
	}
	if n.Has(key) {
		return fmt.Errorf("insert %q: %w", key, ErrDuplicateKey)
	}
	n.Members = append(n.Members, Member{Key: key, Value: value})
	return nil
}

// Set replaces the value under key in place, or appends it when absent.
func (n *Node) Set(key string, value *Node) error {
	if !n.IsObject() {
		return fmt.Errorf("set %q: node is not an object", key)
	}
	for i := range n.Members {
		if n.Members[i].Key == key {
			n.Members[i].Value = value
			return nil
		}
	}
	n.Members = append(n.Members, Member{Key: key, Value: value})
	return nil
}

// Delete removes the member named key and reports whether it existed.
func (n *Node) Delete(key string) bool {
	if !n.IsObject() {
		return false
	}
	for i, m := range n.Members {
		if m.Key == key {
			n.Members = append(n.Members[:i], n.Members[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, Bool: n.Bool, Number: n.Number, Text: n.Text}
	if n.Items != nil {
		c.Items = make([]*Node, len(n.Items))
		for i, it := range n.Items {
			c.Items[i] = it.Clone()
		}
	}
	if n.Members != nil {
		c.Members = make([]Member, len(n.Members))
		for i, m := range n.Members {
			c.Members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
	}
	return c
}

// Equal reports semantic equality: object member order is ignored, array
// order is not, and numbers compare by literal.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case KindNull:
		return true
	case KindBool:
		return n.Bool == o.Bool
	case KindNumber:
		return n.Number == o.Number
	case KindString:
		return n.Text == o.Text
	case KindArray:
		if len(n.Items) != len(o.Items) {
			return false
		}
		for i := range n.Items {
			if !n.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(n.Members) != len(o.Members) {
			return false
		}
		for _, m := range n.Members {
			ov, ok := o.Get(m.Key)
			if !ok || !m.Value.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}
