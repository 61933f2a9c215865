// Package llama reshapes DefiLlama origin documents into the flat records
// served to the dashboard.
//
// Every transform is a pure function of the parsed upstream document and a
// Query. Optional upstream fields are defaulted one at a time: numbers to 0,
// strings to "", arrays to [] and objects to {}. A record missing one field
// still emits the rest. Only a missing top-level container is an error.
package llama

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrShape reports an upstream document without the container a transform reads.
var ErrShape = errors.New("unexpected upstream document shape")

// Transform maps one upstream document to the response value.
type Transform func(doc gjson.Result, q Query) (any, error)

// Query carries the optional request inputs a transform may use.
type Query struct {
	// Search is the free-text filter; empty means no filtering.
	Search string
	// Fields are the record paths Search is matched against.
	Fields []string
}

// Match reports whether rec passes the search filter: an empty search or a
// query without fields matches everything, otherwise any field containing
// the search term (case-insensitive) matches.
func (q Query) Match(rec gjson.Result) bool {
	if q.Search == "" || len(q.Fields) == 0 {
		return true
	}
	needle := strings.ToLower(q.Search)
	for _, f := range q.Fields {
		if strings.Contains(strings.ToLower(rec.Get(f).String()), needle) {
			return true
		}
	}
	return false
}

// requiredArray returns the array at path ("" for the document itself), or
// ErrShape when it is missing.
func requiredArray(doc gjson.Result, path string) (gjson.Result, error) {
	r := at(doc, path)
	if !r.IsArray() {
		return r, fmt.Errorf("%w: %q is not an array", ErrShape, path)
	}
	return r, nil
}

// requiredObject is requiredArray for objects.
func requiredObject(doc gjson.Result, path string) (gjson.Result, error) {
	r := at(doc, path)
	if !r.IsObject() {
		return r, fmt.Errorf("%w: %q is not an object", ErrShape, path)
	}
	return r, nil
}

func at(doc gjson.Result, path string) gjson.Result {
	if path == "" {
		return doc
	}
	return doc.Get(path)
}

// num returns the number at path, 0 when absent, null or not numeric.
func num(r gjson.Result, path string) float64 {
	return r.Get(path).Float()
}

// numOr returns the number at path, or def when it is absent or zero.
func numOr(r gjson.Result, path string, def float64) float64 {
	if v := r.Get(path).Float(); v != 0 {
		return v
	}
	return def
}

// str returns the string at path, "" when absent or null.
func str(r gjson.Result, path string) string {
	v := r.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return v.String()
}

// strOr returns the string at path, or def when it is absent or empty.
func strOr(r gjson.Result, path, def string) string {
	if v := str(r, path); v != "" {
		return v
	}
	return def
}

// strs returns the string array at path, never nil.
func strs(r gjson.Result, path string) []string {
	out := []string{}
	for _, v := range elems(r.Get(path)) {
		out = append(out, v.String())
	}
	return out
}

// joined returns the string array at path joined with ", ".
func joined(r gjson.Result, path string) string {
	return strings.Join(strs(r, path), ", ")
}

// raw returns the JSON value at path verbatim, or def when absent or null.
func raw(r gjson.Result, path, def string) json.RawMessage {
	v := r.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return json.RawMessage(def)
	}
	return json.RawMessage(v.Raw)
}

// rawArray is raw with an empty-array default.
func rawArray(r gjson.Result, path string) json.RawMessage {
	v := r.Get(path)
	if !v.IsArray() {
		return json.RawMessage("[]")
	}
	return json.RawMessage(v.Raw)
}

// rawObject is raw with an empty-object default.
func rawObject(r gjson.Result, path string) json.RawMessage {
	v := r.Get(path)
	if !v.IsObject() {
		return json.RawMessage("{}")
	}
	return json.RawMessage(v.Raw)
}

// elems returns the elements of an array value. Anything else, including a
// scalar or object where an array was expected, has no elements.
func elems(r gjson.Result) []gjson.Result {
	if !r.IsArray() {
		return nil
	}
	return r.Array()
}

// each maps the array items passing q through fn. The result is never nil so
// an empty match encodes as [].
func each[T any](items gjson.Result, q Query, fn func(gjson.Result) T) []T {
	list := elems(items)
	out := make([]T, 0, len(list))
	for _, it := range list {
		if q.Match(it) {
			out = append(out, fn(it))
		}
	}
	return out
}

// Passthrough returns the upstream document unchanged.
func Passthrough(doc gjson.Result, _ Query) (any, error) {
	if doc.Raw == "" {
		return nil, fmt.Errorf("%w: empty document", ErrShape)
	}
	return json.RawMessage(doc.Raw), nil
}
