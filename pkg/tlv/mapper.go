package tlv

import (
	"fmt"
	"reflect"
	"strings"
)

// NODE MAPPING:
// UnmarshalNodes assigns already parsed nodes to struct fields using the same
// `tlv:"<hex tag>"` struct tags as Unmarshal. Field kinds decide the policy:
//
//   - []byte            scalar: the first occurrence wins, later ones are ignored.
//   - [][]byte          repeated: every occurrence is appended in encounter order.
//   - bool + ",presence" flag: the tag occurring is enough, its value is ignored.
//   - []Node + ",unknown" receives the nodes no other field claimed.
//
// Field values are the raw contents of the node, whatever its form.

const (
	optPresence = "presence"
	optUnknown  = "unknown"
)

type nodeField struct {
	tag      Tag
	presence bool
	index    int
}

// UnmarshalNodes maps nodes into target, a non-nil pointer to a struct.
// It returns the nodes that matched no field.
func UnmarshalNodes(nodes []Node, target interface{}) ([]Node, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("target must be a non-nil pointer to a struct")
	}
	v = v.Elem()

	fields, unknownIdx, err := nodeFields(v.Type())
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool)
	var leftovers []Node

	for _, n := range nodes {
		f, ok := matchField(fields, n.tag)
		if !ok {
			leftovers = append(leftovers, n)
			continue
		}

		field := v.Field(f.index)
		switch {
		case f.presence:
			field.SetBool(true)
		case field.Type() == reflect.TypeOf([][]byte{}):
			field.Set(reflect.Append(field, reflect.ValueOf(cloneBytes(n.contents))))
		default:
			if seen[f.index] {
				continue
			}
			field.SetBytes(cloneBytes(n.contents))
		}
		seen[f.index] = true
	}

	if unknownIdx >= 0 && len(leftovers) > 0 {
		v.Field(unknownIdx).Set(reflect.ValueOf(leftovers))
	}

	return leftovers, nil
}

func matchField(fields []nodeField, tag Tag) (nodeField, bool) {
	for _, f := range fields {
		if f.tag.Equal(tag) {
			return f, true
		}
	}
	return nodeField{}, false
}

func nodeFields(t reflect.Type) ([]nodeField, int, error) {
	var fields []nodeField
	unknownIdx := -1

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		config, ok := sf.Tag.Lookup("tlv")
		if !ok || !sf.IsExported() {
			continue
		}

		parts := strings.Split(config, ",")
		opts := parts[1:]

		if hasOption(opts, optUnknown) {
			if sf.Type != reflect.TypeOf([]Node{}) {
				return nil, -1, fmt.Errorf("field %s: unknown collector must be []tlv.Node", sf.Name)
			}
			unknownIdx = i
			continue
		}

		tag, err := ParseTag(parts[0])
		if err != nil {
			return nil, -1, fmt.Errorf("field %s: %w", sf.Name, err)
		}

		f := nodeField{tag: tag, index: i, presence: hasOption(opts, optPresence)}
		switch {
		case f.presence && sf.Type.Kind() != reflect.Bool:
			return nil, -1, fmt.Errorf("field %s: presence flag must be bool", sf.Name)
		case !f.presence && sf.Type != reflect.TypeOf([]byte{}) && sf.Type != reflect.TypeOf([][]byte{}):
			return nil, -1, fmt.Errorf("field %s: unsupported type %s", sf.Name, sf.Type)
		}
		fields = append(fields, f)
	}

	return fields, unknownIdx, nil
}

func hasOption(opts []string, name string) bool {
	for _, o := range opts {
		if strings.TrimSpace(o) == name {
			return true
		}
	}
	return false
}
