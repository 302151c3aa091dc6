// Package render turns a finished traversal into grouped, typed,
// human-readable text exports.
package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/refdump/internal/record"
)

// Markers for values that would otherwise render as nothing.
const (
	nullToken        = "null"
	emptyStringToken = `""`
	emptyListToken   = "[]"
	emptyObjectToken = "{}"
	trueToken        = "True"
	falseToken       = "False"
)

const indentUnit = "  "

// Format renders a decoded content tree as indented text. It is pure:
// identical input yields byte-identical output on every call.
//
// Typed-primitive wrappers are unwrapped, coordinate-like objects compact
// onto one line, and identifier-shaped strings render unquoted so record
// references stay greppable.
//
// Inline values (scalars, wrappers of scalars, compact vectors, empty
// containers) return a bare token; container values return a block whose
// lines are indented at the given level.
//
// RD-P3-F1-T1: Type-aware value formatting
func Format(v interface{}, indent int) string {
	var b strings.Builder
	if isInline(v) {
		b.WriteString(inlineToken(v))
	} else {
		writeBlock(&b, v, indent)
	}
	return b.String()
}

// isInline reports whether a value renders as a single token rather than
// an indented block.
func isInline(v interface{}) bool {
	switch node := v.(type) {
	case nil, bool, json.Number, string, float64, int, int64:
		return true
	case []interface{}:
		return len(node) == 0
	case *orderedmap.OrderedMap[string, interface{}]:
		if _, raw, ok := record.UnwrapTyped(node); ok {
			return isInline(raw)
		}
		return node.Len() == 0 || isVector(node)
	default:
		return false
	}
}

// inlineToken renders a value isInline vouched for.
func inlineToken(v interface{}) string {
	switch node := v.(type) {
	case nil:
		return nullToken
	case bool:
		if node {
			return trueToken
		}
		return falseToken
	case string:
		return stringToken(node)
	case []interface{}:
		return emptyListToken
	case *orderedmap.OrderedMap[string, interface{}]:
		if _, raw, ok := record.UnwrapTyped(node); ok {
			return wrappedToken(raw)
		}
		if node.Len() == 0 {
			return emptyObjectToken
		}
		return vectorToken(node)
	default:
		if lit, ok := numericLiteral(v); ok {
			return lit
		}
		// Unreachable for trees produced by record.DecodeContent.
		return fmt.Sprintf("%v", v)
	}
}

// wrappedToken renders the raw value of a typed-primitive wrapper.
// Booleans and numbers format exactly as their bare forms; strings render
// raw and unquoted regardless of shape, because the wrapper's declared type
// already vouches for them.
//
// RD-P3-F1-T2: Wrapper unwrapping
func wrappedToken(raw interface{}) string {
	switch node := raw.(type) {
	case string:
		if node == "" {
			return emptyStringToken
		}
		return node
	default:
		return inlineToken(raw)
	}
}

// stringToken renders a plain string: unquoted when identifier- or
// number-shaped (the same shape rules reference detection uses), quoted
// with inner quotes escaped otherwise.
//
// RD-P3-F1-T3: Bare-token string rendering
func stringToken(s string) string {
	if s == "" {
		return emptyStringToken
	}
	if record.IsBareToken(s) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// numericLiteral renders any numeric value in its literal decimal form.
func numericLiteral(v interface{}) (string, bool) {
	switch n := v.(type) {
	case json.Number:
		return n.String(), true
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), true
	default:
		return "", false
	}
}

// vectorKeys is the full coordinate field set; an object whose keys form a
// subset with purely numeric values compacts onto one line.
var vectorKeys = map[string]bool{"x": true, "y": true, "z": true, "w": true}

// isVector reports whether an object is coordinate-like: at most four
// keys, all drawn from {x, y, z, w}, all values numeric.
func isVector(obj *orderedmap.OrderedMap[string, interface{}]) bool {
	if obj.Len() == 0 || obj.Len() > 4 {
		return false
	}
	for el := obj.Front(); el != nil; el = el.Next() {
		if !vectorKeys[el.Key] {
			return false
		}
		if _, ok := numericLiteral(el.Value); !ok {
			return false
		}
	}
	return true
}

// vectorToken compacts a coordinate-like object onto one line, keys in
// content order.
//
// RD-P3-F1-T4: Vector compaction
func vectorToken(obj *orderedmap.OrderedMap[string, interface{}]) string {
	var b strings.Builder
	b.WriteString("{")
	for el := obj.Front(); el != nil; el = el.Next() {
		if el != obj.Front() {
			b.WriteString(", ")
		}
		lit, _ := numericLiteral(el.Value)
		b.WriteString(el.Key)
		b.WriteString(": ")
		b.WriteString(lit)
	}
	b.WriteString("}")
	return b.String()
}

// writeBlock renders a container value, one entry per line, each line
// indented at the given level. Container children recurse one level
// deeper. No trailing newline.
func writeBlock(b *strings.Builder, v interface{}, indent int) {
	switch node := v.(type) {
	case *orderedmap.OrderedMap[string, interface{}]:
		if _, raw, ok := record.UnwrapTyped(node); ok {
			// Wrapper around a container: render the payload.
			writeBlock(b, raw, indent)
			return
		}
		writeObjectBlock(b, node, indent)
	case []interface{}:
		writeArrayBlock(b, node, indent)
	default:
		b.WriteString(pad(indent))
		b.WriteString(inlineToken(v))
	}
}

// writeObjectBlock renders one key per line, the type-tag field first when
// present, remaining keys in content order.
func writeObjectBlock(b *strings.Builder, obj *orderedmap.OrderedMap[string, interface{}], indent int) {
	first := true
	if tag, ok := obj.Get(record.TypeField); ok {
		writeEntry(b, record.TypeField, tag, indent, &first)
	}
	for el := obj.Front(); el != nil; el = el.Next() {
		if el.Key == record.TypeField {
			continue
		}
		writeEntry(b, el.Key, el.Value, indent, &first)
	}
}

func writeEntry(b *strings.Builder, key string, value interface{}, indent int, first *bool) {
	if !*first {
		b.WriteString("\n")
	}
	*first = false

	b.WriteString(pad(indent))
	b.WriteString(key)
	if isInline(value) {
		b.WriteString(": ")
		b.WriteString(inlineToken(value))
		return
	}
	b.WriteString(":\n")
	writeBlock(b, value, indent+1)
}

// writeArrayBlock renders one element per line behind a list marker.
func writeArrayBlock(b *strings.Builder, arr []interface{}, indent int) {
	for i, item := range arr {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pad(indent))
		if isInline(item) {
			b.WriteString("- ")
			b.WriteString(inlineToken(item))
			continue
		}
		b.WriteString("-\n")
		writeBlock(b, item, indent+1)
	}
}

func pad(indent int) string {
	return strings.Repeat(indentUnit, indent)
}
