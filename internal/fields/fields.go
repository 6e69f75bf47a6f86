// Package fields projects raw CTI records onto one canonical field set.
package fields

import "github.com/dgallion1/ctidoc/internal/ctijson"

// Key is a canonical field name.
type Key string

const (
	Name        Key = "name"
	ID          Key = "id"
	MitreID     Key = "mitre_id"
	Type        Key = "type"
	Description Key = "description"
	Created     Key = "created"
	Modified    Key = "modified"
	Country     Key = "country"
	Attribution Key = "attribution"
	Aliases     Key = "aliases"
	Labels      Key = "labels"
	Platforms   Key = "platforms"
	Tactics     Key = "tactics"
	DataSources Key = "data_sources"
	Detection   Key = "detection"
	Techniques  Key = "techniques"
	Indicators  Key = "indicators"
	Targets     Key = "targets"
	References  Key = "references"
	URLs        Key = "urls"
	Confidence  Key = "confidence"
	Severity    Key = "severity"
	Pattern     Key = "pattern"
	Version     Key = "version"
	MalpediaURL Key = "malpedia_url"
)

// Order is the canonical listing order of all keys.
var Order = []Key{
	Name, ID, MitreID, Type, Description, Created, Modified, Country, Attribution,
	Aliases, Labels, Platforms, Tactics, DataSources, Detection, Techniques,
	Indicators, Targets, References, URLs, Confidence, Severity, Pattern, Version,
	MalpediaURL,
}

// Set holds resolved fields. A key is present only with a non-empty value.
type Set struct {
	m map[Key]ctijson.Value
}

// put stores v under k unless v is falsy.
func (s *Set) put(k Key, v ctijson.Value) {
	if !v.Truthy() {
		return
	}
	if s.m == nil {
		s.m = make(map[Key]ctijson.Value)
	}
	s.m[k] = v
}

func (s Set) Get(k Key) (ctijson.Value, bool) {
	v, ok := s.m[k]
	return v, ok
}

// Lookup returns the value under k, or null.
func (s Set) Lookup(k Key) ctijson.Value {
	return s.m[k]
}

func (s Set) Has(k Key) bool {
	_, ok := s.m[k]
	return ok
}

func (s Set) Len() int { return len(s.m) }

// Keys returns the present keys in canonical order.
func (s Set) Keys() []Key {
	keys := make([]Key, 0, len(s.m))
	for _, k := range Order {
		if _, ok := s.m[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Value returns the set as an ordered object.
func (s Set) Value() ctijson.Value {
	out := make([]ctijson.Field, 0, len(s.m))
	for _, k := range s.Keys() {
		out = append(out, ctijson.Field{Key: string(k), Value: s.m[k]})
	}
	return ctijson.ObjectValue(out...)
}

func (s Set) MarshalJSON() ([]byte, error) {
	return []byte(s.Value().JSON()), nil
}

// first returns the first truthy value among rec's keys, or null.
func first(rec ctijson.Value, keys ...string) ctijson.Value {
	for _, k := range keys {
		if v := rec.Lookup(k); v.Truthy() {
			return v
		}
	}
	return ctijson.NullValue()
}

func strs(items []string) ctijson.Value {
	vals := make([]ctijson.Value, 0, len(items))
	for _, s := range items {
		vals = append(vals, ctijson.StringValue(s))
	}
	return ctijson.ArrayValue(vals...)
}
