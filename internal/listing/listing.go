// Package listing defines the record model shared by every source:
// the fixed field schema, the raw (string-valued) form produced by
// extractors and the typed form produced by normalization.
package listing

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldType declares the semantic type of a schema field.
type FieldType int

// Field types understood by the normalization pipeline.
const (
	TypeString FieldType = iota
	TypeInt
	TypeFloat
	TypeBool
)

// String returns the lowercase name of the type.
func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	default:
		return fmt.Sprintf("FieldType(%d)", int(t))
	}
}

// Field is one entry of the fixed schema table.
type Field struct {
	Name      string
	Type      FieldType
	Mandatory bool
}

// Canonical names of the six mandatory fields.
const (
	FieldDate      = "date"
	FieldPrice     = "price"
	FieldReference = "reference"
	FieldSourceID  = "source_id"
	FieldTitle     = "title"
	FieldURL       = "url"
)

// Schema is the fixed, ordered field table. Declaration order here is
// the field order used when records are serialized. The table is
// consulted by the normalizer; field types are never inferred.
var Schema = []Field{
	{Name: FieldDate, Type: TypeString, Mandatory: true},
	{Name: FieldPrice, Type: TypeFloat, Mandatory: true},
	{Name: FieldReference, Type: TypeString, Mandatory: true},
	{Name: FieldSourceID, Type: TypeString, Mandatory: true},
	{Name: FieldTitle, Type: TypeString, Mandatory: true},
	{Name: FieldURL, Type: TypeString, Mandatory: true},

	{Name: "agency", Type: TypeString},
	{Name: "coownership", Type: TypeString},
	{Name: "balcony_count", Type: TypeInt},
	{Name: "bathrooms", Type: TypeFloat},
	{Name: "bedrooms", Type: TypeFloat},
	{Name: "currency", Type: TypeString},
	{Name: "description", Type: TypeString},
	{Name: "elevator", Type: TypeBool},
	{Name: "energy_performance", Type: TypeString},
	{Name: "external_size", Type: TypeFloat},
	{Name: "exterior_amenities", Type: TypeString},
	{Name: "floor", Type: TypeInt},
	{Name: "garage", Type: TypeInt},
	{Name: "garden", Type: TypeString},
	{Name: "greenhouse_emission", Type: TypeString},
	{Name: "heating", Type: TypeString},
	{Name: "interior_amenities", Type: TypeString},
	{Name: "location", Type: TypeString},
	{Name: "nb_floor", Type: TypeInt},
	{Name: "parking", Type: TypeInt},
	{Name: "rooms", Type: TypeFloat},
	{Name: "size", Type: TypeFloat},
	{Name: "status", Type: TypeString},
	{Name: "terrace", Type: TypeBool},
	{Name: "type", Type: TypeString},
	{Name: "view", Type: TypeString},
	{Name: "year_of_construction", Type: TypeInt},
}

var schemaIndex = buildSchemaIndex()

func buildSchemaIndex() map[string]Field {
	idx := make(map[string]Field, len(Schema))
	for _, f := range Schema {
		idx[f.Name] = f
	}
	return idx
}

// FieldByName looks a field up in the schema table.
func FieldByName(name string) (Field, bool) {
	f, ok := schemaIndex[name]
	return f, ok
}

// RawRecord is the pre-normalization form of a listing: every present
// field is an untyped string exactly as scraped. A missing key means
// the source did not expose that field.
type RawRecord map[string]string

// Clone returns an independent copy of the raw record.
func (r RawRecord) Clone() RawRecord {
	out := make(RawRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Record is the normalized, typed form of a listing. Values are one of
// string, int64, float64 or bool; a missing key is the distinct
// "absent" state, never a zero value.
type Record map[string]any

// MarshalJSON writes the record as a flat JSON object whose field order
// follows schema declaration order. Fields not present are omitted.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, f := range Schema {
		v, ok := r[f.Name]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, fmt.Errorf("marshal field name %q: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalNoEscape(v)
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", f.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalNoEscape marshals v without HTML-escaping &, < and > so URL
// values stay readable in the output.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Complete reports whether all six mandatory fields are present and
// usable: non-empty strings for the identifier fields and a numeric
// price.
func (r Record) Complete() bool {
	for _, name := range []string{FieldDate, FieldReference, FieldSourceID, FieldTitle, FieldURL} {
		s, ok := r[name].(string)
		if !ok || s == "" {
			return false
		}
	}
	_, ok := r[FieldPrice].(float64)
	return ok
}
