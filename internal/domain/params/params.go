// Package params models the multi-valued parameter bags that flow
// through query composition: caller request parameters, configured
// default layers, and the flat bag handed to the search engine.
package params

import "strings"

// Params is a multi-valued parameter bag. The zero value is usable for
// lookups; use New or a literal for writes.
type Params map[string][]string

// New returns an empty, writable bag.
func New() Params {
	return make(Params)
}

// FromMap builds a bag from single-valued pairs.
func FromMap(m map[string]string) Params {
	p := make(Params, len(m))
	for k, v := range m {
		p[k] = []string{v}
	}
	return p
}

// Clone returns a deep copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// Get returns the first value for key, or "" if the key is absent.
func (p Params) Get(key string) string {
	if v, ok := p.Lookup(key); ok {
		return v
	}
	return ""
}

// GetDefault returns the first value for key, or def if the key is absent.
func (p Params) GetDefault(key, def string) string {
	if v, ok := p.Lookup(key); ok {
		return v
	}
	return def
}

// Lookup returns the first value for key and whether the key is defined.
func (p Params) Lookup(key string) (string, bool) {
	vs, ok := p[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Values returns all values for key, or nil.
func (p Params) Values(key string) []string {
	return p[key]
}

// Has reports whether key is defined with at least one value.
func (p Params) Has(key string) bool {
	_, ok := p.Lookup(key)
	return ok
}

// Set replaces the values for key.
func (p Params) Set(key string, values ...string) {
	p[key] = values
}

// Add appends values for key, keeping existing ones.
func (p Params) Add(key string, values ...string) {
	p[key] = append(p[key], values...)
}

// MultiValue decodes a repeatable parameter. Two encodings are
// supported: the comma-joined form (acl=a,b,c — possibly repeated) and
// the legacy bracket-suffixed form (acl[]=a&acl[]=b). The comma-joined
// form wins when both are present. Returns nil if neither is defined.
func (p Params) MultiValue(name string) []string {
	if vs, ok := p[name]; ok && len(vs) > 0 {
		var out []string
		for _, v := range vs {
			out = append(out, strings.Split(v, ",")...)
		}
		return out
	}
	return p[name+legacySuffix]
}

const legacySuffix = "[]"

// Chain is an ordered list of parameter layers. Lookups walk the
// layers in order and the first layer defining a key wins. Layers are
// never mutated by chain operations.
type Chain []Params

// Lookup returns the first defined value for key across the layers.
func (c Chain) Lookup(key string) (string, bool) {
	for _, layer := range c {
		if v, ok := layer.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// Get returns the first defined value for key, or "" if no layer defines it.
func (c Chain) Get(key string) string {
	v, _ := c.Lookup(key)
	return v
}

// GetDefault returns the first defined value for key, or def.
func (c Chain) GetDefault(key, def string) string {
	if v, ok := c.Lookup(key); ok {
		return v
	}
	return def
}

// Values returns all values of the first layer defining key.
func (c Chain) Values(key string) []string {
	for _, layer := range c {
		if vs, ok := layer[key]; ok && len(vs) > 0 {
			return vs
		}
	}
	return nil
}

// Flatten resolves the chain into a single bag: for every key defined
// in any layer, the values of the first defining layer are taken.
func (c Chain) Flatten() Params {
	out := New()
	for _, layer := range c {
		for k := range layer {
			if !out.Has(k) {
				if vs := c.Values(k); vs != nil {
					out[k] = append([]string(nil), vs...)
				}
			}
		}
	}
	return out
}
