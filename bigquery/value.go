// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bigquery

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	bq "google.golang.org/api/bigquery/v2"
)

// Value stores the contents of a single cell from a BigQuery result.
type Value interface{}

// Row is a single decoded result row. Values are kept in schema order; a
// RECORD column holds a nested *Row and a REPEATED column holds a []Value.
type Row struct {
	schema Schema
	values []Value
}

// Schema returns the schema the row was decoded with.
func (r *Row) Schema() Schema { return r.schema }

// Len returns the number of columns.
func (r *Row) Len() int { return len(r.values) }

// Values returns the column values in schema order.
func (r *Row) Values() []Value { return r.values }

// Get returns the value of the named column.
func (r *Row) Get(name string) (Value, bool) {
	for i, f := range r.schema {
		if f.Name == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// AsMap returns the row as a map from column name to value, converting
// nested records to maps as well.
func (r *Row) AsMap() map[string]Value {
	m := make(map[string]Value, len(r.values))
	for i, f := range r.schema {
		m[f.Name] = flatten(r.values[i], (*Row).asMapValue)
	}
	return m
}

// AsValues returns the column values in order, converting nested records
// to []Value as well.
func (r *Row) AsValues() []Value {
	vs := make([]Value, len(r.values))
	for i, v := range r.values {
		vs[i] = flatten(v, (*Row).asValuesValue)
	}
	return vs
}

func (r *Row) asMapValue() Value    { return r.AsMap() }
func (r *Row) asValuesValue() Value { return r.AsValues() }

func flatten(v Value, record func(*Row) Value) Value {
	switch v := v.(type) {
	case *Row:
		return record(v)
	case []Value:
		arr := make([]Value, len(v))
		for i, e := range v {
			arr[i] = flatten(e, record)
		}
		return arr
	}
	return v
}

// MarshalJSON encodes the row as a JSON object whose keys follow schema
// order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.schema {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(jsonValue(r.values[i]))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonValue renders values whose default JSON encoding loses information.
func jsonValue(v Value) interface{} {
	switch v := v.(type) {
	case *big.Rat:
		return v.FloatString(9)
	case civil.Date, civil.Time, civil.DateTime:
		return fmt.Sprint(v)
	case []Value:
		arr := make([]interface{}, len(v))
		for i, e := range v {
			arr[i] = jsonValue(e)
		}
		return arr
	}
	return v
}

// convertRows converts a page of TableRows into Rows. schema is used to
// interpret the data from rows; its length must match the length of each
// row at every nesting level.
func convertRows(rows []*bq.TableRow, schema Schema) ([]*Row, error) {
	rs := make([]*Row, 0, len(rows))
	for i, r := range rows {
		cells := make([]interface{}, len(r.F))
		for j, c := range r.F {
			cells[j] = c.V
		}
		row, err := convertRow(cells, schema, "")
		if err != nil {
			if de, ok := err.(*DecodeError); ok {
				de.Row = i
			}
			return nil, err
		}
		rs = append(rs, row)
	}
	return rs, nil
}

func convertRow(cells []interface{}, schema Schema, path string) (*Row, error) {
	if len(cells) != len(schema) {
		return nil, &DecodeError{Path: path, Want: len(schema), Got: len(cells)}
	}
	row := &Row{schema: schema, values: make([]Value, len(cells))}
	for i, cell := range cells {
		fs := schema[i]
		v, err := convertValue(cell, fs, joinPath(path, fs.Name))
		if err != nil {
			return nil, err
		}
		row.values[i] = v
	}
	return row, nil
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func convertValue(val interface{}, fs *FieldSchema, path string) (Value, error) {
	if val == nil {
		return nil, nil
	}
	if !fs.Repeated {
		return convertSingle(val, fs, path)
	}
	cells, ok := val.([]interface{})
	if !ok {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("got %T, want a repeated value", val)}
	}
	vs := make([]Value, 0, len(cells))
	for i, cell := range cells {
		// each cell contains a single entry, keyed by "v"
		elem, err := cellValue(cell)
		if err != nil {
			return nil, &DecodeError{Path: fmt.Sprintf("%s[%d]", path, i), Err: err}
		}
		v, err := convertSingle(elem, fs, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

func convertSingle(val interface{}, fs *FieldSchema, path string) (Value, error) {
	if val == nil {
		return nil, nil
	}
	if fs.Type == RecordFieldType {
		return convertNestedRecord(val, fs.Schema, path)
	}
	s, ok := val.(string)
	if !ok {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("got %T, want a %s value encoded as a string", val, fs.Type)}
	}
	v, err := convertBasicType(s, fs.Type)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return v, nil
}

// convertNestedRecord decodes a RECORD cell, which has the same {"f": [...]}
// shape as a top-level row.
func convertNestedRecord(val interface{}, schema Schema, path string) (Value, error) {
	m, ok := val.(map[string]interface{})
	if !ok {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("got %T, want a record", val)}
	}
	fields, ok := m["f"].([]interface{})
	if !ok {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("missing fields in record")}
	}
	cells := make([]interface{}, len(fields))
	for i, f := range fields {
		v, err := cellValue(f)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		cells[i] = v
	}
	return convertRow(cells, schema, path)
}

func cellValue(cell interface{}) (interface{}, error) {
	m, ok := cell.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("got %T, want a cell object", cell)
	}
	v, ok := m["v"]
	if !ok {
		return nil, fmt.Errorf("missing value in a field cell")
	}
	return v, nil
}

// convertBasicType returns val as an interface with a concrete type specified by typ.
func convertBasicType(val string, typ FieldType) (Value, error) {
	switch typ {
	case StringFieldType, GeographyFieldType, JSONFieldType, IntervalFieldType, RangeFieldType:
		return val, nil
	case BytesFieldType:
		return base64.StdEncoding.DecodeString(val)
	case IntegerFieldType:
		return strconv.ParseInt(val, 10, 64)
	case FloatFieldType:
		return strconv.ParseFloat(val, 64)
	case BooleanFieldType:
		return strconv.ParseBool(val)
	case TimestampFieldType:
		return parseTimestamp(val)
	case DateFieldType:
		return civil.ParseDate(val)
	case TimeFieldType:
		return civil.ParseTime(val)
	case DateTimeFieldType:
		return civil.ParseDateTime(strings.Replace(val, " ", "T", 1))
	case NumericFieldType, BigNumericFieldType:
		r, ok := new(big.Rat).SetString(val)
		if !ok {
			return nil, fmt.Errorf("bigquery: invalid %s value %q", typ, val)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unrecognized type: %s", typ)
	}
}

// parseTimestamp accepts both the int64 microsecond encoding we request and
// the float seconds encoding older responses use.
func parseTimestamp(val string) (time.Time, error) {
	if us, err := strconv.ParseInt(val, 10, 64); err == nil {
		return time.UnixMicro(us).UTC(), nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return time.Time{}, err
	}
	sec, frac := int64(f), f-float64(int64(f))
	return time.Unix(sec, int64(frac*1e9)).Round(time.Microsecond).UTC(), nil
}
