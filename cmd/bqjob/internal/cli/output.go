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

package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strings"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/civil"
	"github.com/chingor13/bqjob/bigquery"
	"gopkg.in/yaml.v3"
)

// rowWriter renders decoded rows in one output format. Flush must be called
// once all rows are written.
type rowWriter interface {
	Write(r *bigquery.Row) error
	Flush() error
}

var formats = []string{"table", "json", "yaml"}

func newRowWriter(w io.Writer, format string) (rowWriter, error) {
	switch format {
	case "table":
		return &tableWriter{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}, nil
	case "json":
		return &jsonWriter{enc: json.NewEncoder(w)}, nil
	case "yaml":
		return &yamlWriter{enc: yaml.NewEncoder(w)}, nil
	}
	return nil, fmt.Errorf("unsupported format %q: use one of %s", format, strings.Join(formats, ", "))
}

type tableWriter struct {
	tw     *tabwriter.Writer
	header bool
}

func (t *tableWriter) Write(r *bigquery.Row) error {
	if !t.header {
		t.header = true
		if _, err := fmt.Fprintln(t.tw, strings.ToUpper(strings.Join(r.Schema().FieldNames(), "\t"))); err != nil {
			return err
		}
	}
	cells := make([]string, r.Len())
	for i, v := range r.Values() {
		cells[i] = formatCell(v)
	}
	_, err := fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
	return err
}

func (t *tableWriter) Flush() error {
	return t.tw.Flush()
}

func formatCell(v bigquery.Value) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case *bigquery.Row, []bigquery.Value:
		b, err := json.Marshal(plainValue(v))
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
	return fmt.Sprint(plainValue(v))
}

// plainValue converts decoded values to types that encode the same way in
// every output format.
func plainValue(v bigquery.Value) interface{} {
	switch v := v.(type) {
	case *bigquery.Row:
		m := make(map[string]interface{}, v.Len())
		for i, f := range v.Schema() {
			m[f.Name] = plainValue(v.Values()[i])
		}
		return m
	case []bigquery.Value:
		arr := make([]interface{}, len(v))
		for i, e := range v {
			arr[i] = plainValue(e)
		}
		return arr
	case []byte:
		return base64.StdEncoding.EncodeToString(v)
	case *big.Rat:
		return v.FloatString(9)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case civil.Date, civil.Time, civil.DateTime:
		return fmt.Sprint(v)
	}
	return v
}

// jsonWriter writes newline-delimited JSON objects with keys in schema
// order.
type jsonWriter struct {
	enc *json.Encoder
}

func (j *jsonWriter) Write(r *bigquery.Row) error {
	return j.enc.Encode(r)
}

func (j *jsonWriter) Flush() error { return nil }

// yamlWriter writes a YAML document per row.
type yamlWriter struct {
	enc *yaml.Encoder
}

func (y *yamlWriter) Write(r *bigquery.Row) error {
	n, err := rowNode(r)
	if err != nil {
		return err
	}
	return y.enc.Encode(n)
}

func (y *yamlWriter) Flush() error {
	return y.enc.Close()
}

// rowNode builds a mapping node so that keys keep schema order.
func rowNode(r *bigquery.Row) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i, f := range r.Schema() {
		v, err := valueNode(r.Values()[i])
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: f.Name}, v)
	}
	return n, nil
}

func valueNode(v bigquery.Value) (*yaml.Node, error) {
	switch v := v.(type) {
	case *bigquery.Row:
		return rowNode(v)
	case []bigquery.Value:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, e := range v {
			en, err := valueNode(e)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, en)
		}
		return n, nil
	}
	n := &yaml.Node{}
	if err := n.Encode(plainValue(v)); err != nil {
		return nil, err
	}
	return n, nil
}
