package sas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
)

// SchemaDataType is one byte of a schema layout.
type SchemaDataType uint8

const (
	TypeU8 SchemaDataType = iota
	TypeU16
	TypeU32
	TypeU64
	TypeU128
	TypeI8
	TypeI16
	TypeI32
	TypeI64
	TypeI128
	TypeBool
	TypeChar
	TypeString
	TypeVecU8
	TypeVecU16
	TypeVecU32
	TypeVecU64
	TypeVecU128
	TypeVecI8
	TypeVecI16
	TypeVecI32
	TypeVecI64
	TypeVecI128
	TypeVecBool
	TypeVecChar
	TypeVecString
)

var schemaDataTypeNames = []string{
	"u8", "u16", "u32", "u64", "u128",
	"i8", "i16", "i32", "i64", "i128",
	"bool", "char", "string",
	"vec<u8>", "vec<u16>", "vec<u32>", "vec<u64>", "vec<u128>",
	"vec<i8>", "vec<i16>", "vec<i32>", "vec<i64>", "vec<i128>",
	"vec<bool>", "vec<char>", "vec<string>",
}

func (t SchemaDataType) String() string {
	if int(t) < len(schemaDataTypeNames) {
		return schemaDataTypeNames[t]
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

func (t SchemaDataType) Valid() bool {
	return t <= TypeVecString
}

// IsVec reports whether t is a length-prefixed vector type.
func (t SchemaDataType) IsVec() bool {
	return t >= TypeVecU8 && t <= TypeVecString
}

// Elem returns the element type of a vector type, or t itself.
func (t SchemaDataType) Elem() SchemaDataType {
	if t.IsVec() {
		return t - TypeVecU8
	}
	return t
}

// ParseSchemaDataType accepts the names returned by SchemaDataType.String;
// "[]u8" and "vec_u8" spellings of vector types are also accepted.
func ParseSchemaDataType(name string) (SchemaDataType, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.HasPrefix(normalized, "[]"):
		normalized = "vec<" + strings.TrimPrefix(normalized, "[]") + ">"
	case strings.HasPrefix(normalized, "vec_"):
		normalized = "vec<" + strings.TrimPrefix(normalized, "vec_") + ">"
	}

	for index, candidate := range schemaDataTypeNames {
		if candidate == normalized {
			return SchemaDataType(index), nil
		}
	}
	return 0, fmt.Errorf("unknown schema data type %q", name)
}

// SchemaField pairs a field name with its data type.
type SchemaField struct {
	Name string
	Type SchemaDataType
}

// Fields zips the schema's field names with its layout.
func (s Schema) Fields() ([]SchemaField, error) {
	if len(s.FieldNames) != len(s.Layout) {
		return nil, fmt.Errorf("schema has %d field names but %d layout entries", len(s.FieldNames), len(s.Layout))
	}

	fields := make([]SchemaField, len(s.Layout))
	for index, code := range s.Layout {
		dataType := SchemaDataType(code)
		if !dataType.Valid() {
			return nil, fmt.Errorf("field %q has unknown data type %d", s.FieldNames[index], code)
		}
		fields[index] = SchemaField{Name: s.FieldNames[index], Type: dataType}
	}
	return fields, nil
}

// LayoutFromFields splits fields into the layout bytes and field names a
// CreateSchema instruction carries.
func LayoutFromFields(fields []SchemaField) ([]byte, []string) {
	layout := make([]byte, len(fields))
	names := make([]string, len(fields))
	for index, field := range fields {
		layout[index] = byte(field.Type)
		names[index] = field.Name
	}
	return layout, names
}

// SerializeAttestationData encodes values in schema field order. Every field
// must be present; extra keys are rejected.
func SerializeAttestationData(schema Schema, values map[string]any) ([]byte, error) {
	fields, err := schema.Fields()
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		known[field.Name] = struct{}{}
	}
	for key := range values {
		if _, ok := known[key]; !ok {
			return nil, fmt.Errorf("field %q is not part of schema %q", key, schema.Name)
		}
	}

	buffer := new(bytes.Buffer)
	encoder := bin.NewBorshEncoder(buffer)
	for _, field := range fields {
		value, ok := values[field.Name]
		if !ok {
			return nil, fmt.Errorf("missing value for field %q", field.Name)
		}
		if err := encodeField(encoder, field.Type, value); err != nil {
			return nil, fmt.Errorf("field %q (%s): %w", field.Name, field.Type, err)
		}
	}
	return buffer.Bytes(), nil
}

// DeserializeAttestationData decodes attestation data against schema.
// Integers of 64 bits or less decode to their Go type, 128-bit integers to
// *big.Int and chars to single-rune strings.
func DeserializeAttestationData(schema Schema, data []byte) (map[string]any, error) {
	fields, err := schema.Fields()
	if err != nil {
		return nil, err
	}

	decoder := bin.NewBorshDecoder(data)
	values := make(map[string]any, len(fields))
	for _, field := range fields {
		value, err := decodeField(decoder, field.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q (%s): %w", field.Name, field.Type, err)
		}
		values[field.Name] = value
	}

	if remaining := decoder.Remaining(); remaining != 0 {
		return nil, fmt.Errorf("%d trailing bytes after attestation data", remaining)
	}
	return values, nil
}

func encodeField(encoder *bin.Encoder, dataType SchemaDataType, value any) error {
	if !dataType.IsVec() {
		return encodeScalar(encoder, dataType, value)
	}

	if raw, ok := value.([]byte); ok && dataType == TypeVecU8 {
		return writeBytes(encoder, raw)
	}

	items := reflect.ValueOf(value)
	if items.Kind() != reflect.Slice && items.Kind() != reflect.Array {
		return fmt.Errorf("expected a list, got %T", value)
	}
	if err := encoder.WriteUint32(uint32(items.Len()), bin.LE); err != nil {
		return err
	}
	for index := 0; index < items.Len(); index++ {
		if err := encodeScalar(encoder, dataType.Elem(), items.Index(index).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", index, err)
		}
	}
	return nil
}

func encodeScalar(encoder *bin.Encoder, dataType SchemaDataType, value any) error {
	switch dataType {
	case TypeBool:
		flag, err := toBool(value)
		if err != nil {
			return err
		}
		return encoder.WriteBool(flag)
	case TypeChar:
		character, err := toChar(value)
		if err != nil {
			return err
		}
		return encoder.WriteUint32(uint32(character), bin.LE)
	case TypeString:
		text, err := toText(value)
		if err != nil {
			return err
		}
		return writeBytes(encoder, []byte(text))
	}

	bits, signed := integerWidth(dataType)
	integer, err := toInteger(value, bits, signed)
	if err != nil {
		return err
	}

	switch dataType {
	case TypeU8:
		return encoder.WriteUint8(uint8(integer.Uint64()))
	case TypeU16:
		return encoder.WriteUint16(uint16(integer.Uint64()), bin.LE)
	case TypeU32:
		return encoder.WriteUint32(uint32(integer.Uint64()), bin.LE)
	case TypeU64:
		return encoder.WriteUint64(integer.Uint64(), bin.LE)
	case TypeI8:
		return encoder.WriteUint8(uint8(int8(integer.Int64())))
	case TypeI16:
		return encoder.WriteUint16(uint16(int16(integer.Int64())), bin.LE)
	case TypeI32:
		return encoder.WriteUint32(uint32(int32(integer.Int64())), bin.LE)
	case TypeI64:
		return encoder.WriteUint64(uint64(integer.Int64()), bin.LE)
	case TypeU128, TypeI128:
		return encoder.WriteBytes(int128Bytes(integer), false)
	}
	return fmt.Errorf("unsupported data type %d", dataType)
}

// writeBytes writes a u32 length prefix followed by raw.
func writeBytes(encoder *bin.Encoder, raw []byte) error {
	if err := encoder.WriteUint32(uint32(len(raw)), bin.LE); err != nil {
		return err
	}
	return encoder.WriteBytes(raw, false)
}

func readBytes(decoder *bin.Decoder) ([]byte, error) {
	length, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}
	if int(length) > decoder.Remaining() {
		return nil, fmt.Errorf("length %d exceeds remaining data", length)
	}
	return decoder.ReadNBytes(int(length))
}

func decodeField(decoder *bin.Decoder, dataType SchemaDataType) (any, error) {
	if !dataType.IsVec() {
		return decodeScalar(decoder, dataType)
	}

	elem := dataType.Elem()
	if elem == TypeU8 {
		return readBytes(decoder)
	}

	length, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}
	if int(length) > decoder.Remaining() {
		return nil, fmt.Errorf("vector length %d exceeds remaining data", length)
	}

	items := make([]any, 0, length)
	for index := uint32(0); index < length; index++ {
		item, err := decodeScalar(decoder, elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", index, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeScalar(decoder *bin.Decoder, dataType SchemaDataType) (any, error) {
	switch dataType {
	case TypeU8:
		return decoder.ReadUint8()
	case TypeU16:
		return decoder.ReadUint16(bin.LE)
	case TypeU32:
		return decoder.ReadUint32(bin.LE)
	case TypeU64:
		return decoder.ReadUint64(bin.LE)
	case TypeI8:
		value, err := decoder.ReadUint8()
		return int8(value), err
	case TypeI16:
		value, err := decoder.ReadUint16(bin.LE)
		return int16(value), err
	case TypeI32:
		value, err := decoder.ReadUint32(bin.LE)
		return int32(value), err
	case TypeI64:
		value, err := decoder.ReadUint64(bin.LE)
		return int64(value), err
	case TypeU128, TypeI128:
		raw, err := decoder.ReadNBytes(16)
		if err != nil {
			return nil, err
		}
		return bigFromInt128Bytes(raw, dataType == TypeI128), nil
	case TypeBool:
		value, err := decoder.ReadUint8()
		if err != nil {
			return nil, err
		}
		if value > 1 {
			return nil, fmt.Errorf("invalid bool byte %d", value)
		}
		return value == 1, nil
	case TypeChar:
		value, err := decoder.ReadUint32(bin.LE)
		if err != nil {
			return nil, err
		}
		if !utf8.ValidRune(rune(value)) {
			return nil, fmt.Errorf("invalid char %d", value)
		}
		return string(rune(value)), nil
	case TypeString:
		raw, err := readBytes(decoder)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	}
	return nil, fmt.Errorf("unsupported data type %d", dataType)
}

func integerWidth(dataType SchemaDataType) (int, bool) {
	switch dataType {
	case TypeU8:
		return 8, false
	case TypeU16:
		return 16, false
	case TypeU32:
		return 32, false
	case TypeU64:
		return 64, false
	case TypeI8:
		return 8, true
	case TypeI16:
		return 16, true
	case TypeI32:
		return 32, true
	case TypeI64:
		return 64, true
	}
	return 128, dataType == TypeI128
}

// toInteger converts numeric Go values, json.Number and decimal strings and
// checks that the result fits the target width.
func toInteger(value any, bits int, signed bool) (*big.Int, error) {
	integer := new(big.Int)

	switch typed := value.(type) {
	case int:
		integer.SetInt64(int64(typed))
	case int8:
		integer.SetInt64(int64(typed))
	case int16:
		integer.SetInt64(int64(typed))
	case int32:
		integer.SetInt64(int64(typed))
	case int64:
		integer.SetInt64(typed)
	case uint:
		integer.SetUint64(uint64(typed))
	case uint8:
		integer.SetUint64(uint64(typed))
	case uint16:
		integer.SetUint64(uint64(typed))
	case uint32:
		integer.SetUint64(uint64(typed))
	case uint64:
		integer.SetUint64(typed)
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return nil, fmt.Errorf("%v is not an integer", typed)
		}
		if _, accuracy := big.NewFloat(typed).Int(integer); accuracy != big.Exact {
			return nil, fmt.Errorf("%v is not an integer", typed)
		}
	case *big.Int:
		if typed == nil {
			return nil, fmt.Errorf("nil integer")
		}
		integer.Set(typed)
	case json.Number:
		if _, ok := integer.SetString(typed.String(), 10); !ok {
			return nil, fmt.Errorf("%q is not an integer", typed)
		}
	case string:
		if _, ok := integer.SetString(strings.TrimSpace(typed), 10); !ok {
			return nil, fmt.Errorf("%q is not an integer", typed)
		}
	default:
		return nil, fmt.Errorf("expected an integer, got %T", value)
	}

	var minimum, maximum *big.Int
	if signed {
		maximum = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits-1)), big.NewInt(1))
		minimum = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(bits-1)))
	} else {
		maximum = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
		minimum = big.NewInt(0)
	}
	if integer.Cmp(minimum) < 0 || integer.Cmp(maximum) > 0 {
		return nil, fmt.Errorf("%s out of range [%s, %s]", integer, minimum, maximum)
	}
	return integer, nil
}

func toBool(value any) (bool, error) {
	switch typed := value.(type) {
	case bool:
		return typed, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected a bool, got %v", value)
}

func toChar(value any) (rune, error) {
	switch typed := value.(type) {
	case rune:
		if utf8.ValidRune(typed) {
			return typed, nil
		}
	case string:
		if utf8.RuneCountInString(typed) == 1 {
			character, _ := utf8.DecodeRuneInString(typed)
			return character, nil
		}
	}
	return 0, fmt.Errorf("expected a single character, got %v", value)
}

func toText(value any) (string, error) {
	switch typed := value.(type) {
	case string:
		return typed, nil
	case fmt.Stringer:
		return typed.String(), nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(typed), nil
	}
	return "", fmt.Errorf("expected a string, got %T", value)
}

// int128Bytes renders integer as 16 little-endian two's complement bytes.
func int128Bytes(integer *big.Int) []byte {
	value := new(big.Int).Set(integer)
	if value.Sign() < 0 {
		value.Add(value, new(big.Int).Lsh(big.NewInt(1), 128))
	}

	bigEndian := value.FillBytes(make([]byte, 16))
	littleEndian := make([]byte, 16)
	for index := range bigEndian {
		littleEndian[index] = bigEndian[15-index]
	}
	return littleEndian
}

func bigFromInt128Bytes(raw []byte, signed bool) *big.Int {
	bigEndian := make([]byte, len(raw))
	for index := range raw {
		bigEndian[index] = raw[len(raw)-1-index]
	}

	value := new(big.Int).SetBytes(bigEndian)
	if signed && raw[len(raw)-1]&0x80 != 0 {
		value.Sub(value, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return value
}
