package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/elliotchance/orderedmap/v2"
)

// Wrapper field names for typed-primitive values such as
// {"type": "Bool", "value": true}.
const (
	WrapperTypeField  = "type"
	WrapperValueField = "value"
)

// DecodeContent parses raw JSON bytes into a content tree that preserves
// object key order. Objects decode to *orderedmap.OrderedMap[string, interface{}],
// arrays to []interface{}, numbers to json.Number, and the remaining scalars
// to string, bool, or nil.
func DecodeContent(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	return value, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool, or nil
		return tok, nil
	}

	switch delim {
	case '{':
		obj := orderedmap.NewOrderedMap[string, interface{}]()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("expected object key, got %v", keyTok)
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, value)
		}
		// closing brace
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := make([]interface{}, 0)
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		// closing bracket
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// UnwrapTyped reports whether v is a typed-primitive wrapper object,
// an object holding exactly a type name and a raw value field, and
// returns both when it is.
func UnwrapTyped(v interface{}) (typeName string, raw interface{}, ok bool) {
	obj, isObj := v.(*orderedmap.OrderedMap[string, interface{}])
	if !isObj || obj.Len() != 2 {
		return "", nil, false
	}

	tv, hasType := obj.Get(WrapperTypeField)
	raw, hasValue := obj.Get(WrapperValueField)
	if !hasType || !hasValue {
		return "", nil, false
	}

	typeName, isString := tv.(string)
	if !isString || typeName == "" {
		return "", nil, false
	}
	return typeName, raw, true
}
