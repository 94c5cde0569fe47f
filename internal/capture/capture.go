// Package capture accumulates labeled matcher results into a tree that
// mirrors list nesting, and serializes it to JSON with insertion-ordered
// object keys.
package capture

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

type valueKind int

const (
	kindString valueKind = iota
	kindArray
	kindObject
)

// Value is a capture tree node: a leaf string, an array, or an object with
// insertion-ordered keys.
type Value struct {
	kind   valueKind
	str    string
	arr    []*Value
	keys   []string
	fields map[string]*Value
}

// String returns a leaf value.
func String(s string) *Value {
	return &Value{kind: kindString, str: s}
}

// Object returns an empty object value.
func Object() *Value {
	return &Value{kind: kindObject, fields: make(map[string]*Value)}
}

// Array returns an empty array value.
func Array() *Value {
	return &Value{kind: kindArray}
}

func (v *Value) IsString() bool { return v.kind == kindString }
func (v *Value) IsArray() bool  { return v.kind == kindArray }
func (v *Value) IsObject() bool { return v.kind == kindObject }

// Str returns the leaf string, or "" for non-leaves.
func (v *Value) Str() string { return v.str }

// Items returns the array elements.
func (v *Value) Items() []*Value { return v.arr }

// Keys returns the object keys in insertion order.
func (v *Value) Keys() []string { return v.keys }

// Get returns the child under label, or nil.
func (v *Value) Get(label string) *Value {
	if v.kind != kindObject {
		return nil
	}
	return v.fields[label]
}

// Empty reports whether an object has no keys.
func (v *Value) Empty() bool {
	return v.kind == kindObject && len(v.keys) == 0
}

// Push appends an element to an array value.
func (v *Value) Push(child *Value) {
	v.arr = append(v.arr, child)
}

// Set stores child under label. A second Set with the same label promotes
// the existing value to an array and appends; further Sets keep appending.
func (v *Value) Set(label string, child *Value) {
	existing, ok := v.fields[label]
	if !ok {
		v.fields[label] = child
		v.keys = append(v.keys, label)
		return
	}
	if existing.kind == kindArray {
		existing.Push(child)
		return
	}
	arr := Array()
	arr.Push(existing)
	arr.Push(child)
	v.fields[label] = arr
}

// Append adds child to the array stored under label, creating the array on
// first use. List groupings always produce arrays, even with one element.
func (v *Value) Append(label string, child *Value) {
	existing, ok := v.fields[label]
	if ok && existing.kind == kindArray {
		existing.Push(child)
		return
	}
	arr := Array()
	if ok {
		arr.Push(existing)
	}
	arr.Push(child)
	if !ok {
		v.keys = append(v.keys, label)
	}
	v.fields[label] = arr
}

// MergeInto folds an object's fields into dst, preserving insertion order.
// Array values append element-wise so repeated merges accumulate; scalars
// and objects use Set semantics.
func (v *Value) MergeInto(dst *Value) {
	for _, k := range v.keys {
		child := v.fields[k]
		if child.kind == kindArray {
			for _, item := range child.arr {
				dst.Append(k, item)
			}
			continue
		}
		dst.Set(k, child)
	}
}

// RemoveLast undoes the most recent Append under label. Used by the list
// validator's single-step backtrack.
func (v *Value) RemoveLast(label string) {
	existing, ok := v.fields[label]
	if !ok || existing.kind != kindArray || len(existing.arr) == 0 {
		return
	}
	existing.arr = existing.arr[:len(existing.arr)-1]
}

// MarshalJSON serializes the value with object keys in insertion order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) encode(buf *bytes.Buffer) error {
	switch v.kind {
	case kindString:
		// Captured fragments may be raw HTML; keep them readable.
		b, err := json.MarshalWithOption(v.str, json.DisableHTMLEscape())
		if err != nil {
			return err
		}
		buf.Write(b)
	case kindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case kindObject:
		buf.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := v.fields[key].encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unknown capture value kind %d", v.kind)
	}
	return nil
}
