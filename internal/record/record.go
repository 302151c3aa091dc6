// Package record defines the content model shared across refdump: records
// addressed by dotted "namespace.name" paths, their order-preserving decoded
// content trees, and the identifier shape rules used for reference detection.
package record

import (
	"strings"

	orderedmap "github.com/elliotchance/orderedmap/v2"
)

// TypeField is the conventional content field declaring a record's type tag.
const TypeField = "$type"

// UnknownType is the type tag assigned to records whose content declares none.
const UnknownType = "Unknown"

// Record is one addressable entity fetched from the store.
// Immutable after creation.
type Record struct {
	Path    string
	Content interface{}
}

// New builds a Record from its path and decoded content tree.
func New(path string, content interface{}) *Record {
	return &Record{Path: path, Content: content}
}

// TypeTag returns the record's declared type tag, or UnknownType when the
// content carries none.
func (r *Record) TypeTag() string {
	obj, ok := r.Content.(*orderedmap.OrderedMap[string, interface{}])
	if !ok {
		return UnknownType
	}
	v, ok := obj.Get(TypeField)
	if !ok {
		return UnknownType
	}
	tag, ok := v.(string)
	if !ok || tag == "" {
		return UnknownType
	}
	return tag
}

// Namespace returns the record's namespace.
func (r *Record) Namespace() string {
	return Namespace(r.Path)
}

// Namespace returns the portion of a record path before its first separator.
// A path without a separator is its own namespace.
func Namespace(path string) string {
	if i := strings.Index(path, "."); i >= 0 {
		return path[:i]
	}
	return path
}

// Name returns the portion of a record path after its first separator,
// or the whole path when there is none.
func Name(path string) string {
	if i := strings.Index(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}
