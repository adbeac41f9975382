package tlv

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"

	"github.com/moov-io/bertlv"
)

// WriteStructFields inspects a struct and writes its tagged fields to the strings.Builder.
// It joins lines with newlines but DOES NOT add a trailing newline, preventing artifacts in strings.Split.
// If the builder is not empty, it prepends a newline to separate this block from previous content.
//
// Rendered kinds: []byte (hex, or per the `fmt` struct tag), [][]byte (one line per
// occurrence), presence flags (only when set), and unknown []Node / []bertlv.TLV.
func WriteStructFields(sb *strings.Builder, prefix string, s interface{}) {
	val := reflect.ValueOf(s)

	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	var lines []string

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		if !fieldType.IsExported() || fieldType.Anonymous {
			continue
		}

		switch {
		case field.Type() == reflect.TypeOf([]Node{}):
			lines = append(lines, formatUnknownNodes(prefix, field)...)
		case field.Type() == reflect.TypeOf([]bertlv.TLV{}):
			lines = append(lines, formatUnknownField(prefix, field)...)
		case field.Type() == reflect.TypeOf([][]byte{}):
			lines = append(lines, formatRepeatedField(prefix, field, fieldType)...)
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.Uint8:
			if line := formatByteSliceField(prefix, field, fieldType); line != "" {
				lines = append(lines, line)
			}
		case field.Kind() == reflect.Bool:
			if field.Bool() {
				lines = append(lines, fmt.Sprintf("    - %s.%s: present", prefix, fieldName(fieldType)))
			}
		}
	}

	if len(lines) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.Join(lines, "\n"))
	}
}

func fieldName(fieldType reflect.StructField) string {
	name := fieldType.Name
	if tlvTag := strings.Split(fieldType.Tag.Get("tlv"), ",")[0]; tlvTag != "" {
		name = fmt.Sprintf("%s (%s)", name, tlvTag)
	}
	return name
}

func formatByteSliceField(prefix string, field reflect.Value, fieldType reflect.StructField) string {
	if field.IsNil() {
		return ""
	}

	displayVal := formatByteValue(field.Bytes(), fieldType.Tag.Get("fmt"))
	return fmt.Sprintf("    - %s.%s: %s", prefix, fieldName(fieldType), displayVal)
}

func formatRepeatedField(prefix string, field reflect.Value, fieldType reflect.StructField) []string {
	var lines []string
	for i := 0; i < field.Len(); i++ {
		displayVal := formatByteValue(field.Index(i).Bytes(), fieldType.Tag.Get("fmt"))
		lines = append(lines, fmt.Sprintf("    - %s.%s[%d]: %s", prefix, fieldName(fieldType), i+1, displayVal))
	}
	return lines
}

func formatUnknownNodes(prefix string, field reflect.Value) []string {
	var lines []string
	for _, n := range field.Interface().([]Node) {
		valStr := strings.ToUpper(hex.EncodeToString(n.Contents()))
		lines = append(lines, fmt.Sprintf("    - %s.Unknown Tag %s: %s", prefix, n.Tag(), valStr))
	}
	return lines
}

func formatUnknownField(prefix string, field reflect.Value) []string {
	var lines []string
	for _, t := range field.Interface().([]bertlv.TLV) {
		valStr := strings.ToUpper(hex.EncodeToString(t.Value))
		lines = append(lines, fmt.Sprintf("    - %s.Unknown Tag %s: %s", prefix, t.Tag, valStr))
	}
	return lines
}

func formatByteValue(data []byte, format string) string {
	switch format {
	case "ascii":
		return fmt.Sprintf("%X (%q)", data, MakeSafeASCII(data))
	case "int":
		var integer int
		for _, b := range data {
			integer = (integer << 8) | int(b)
		}
		return fmt.Sprintf("%X (Dec: %d)", data, integer)
	default:
		if len(data) == 0 {
			return "(empty)"
		}
		return strings.ToUpper(hex.EncodeToString(data))
	}
}

// MakeSafeASCII replaces non-printable bytes with dots.
func MakeSafeASCII(data []byte) string {
	return strings.Map(func(r rune) rune {
		if r >= 32 && r <= 126 {
			return r
		}
		return '.'
	}, string(data))
}
