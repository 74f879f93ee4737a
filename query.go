package cypherdto

import (
	"fmt"
	"reflect"
	"strings"
)

// Site is one place in a template whose placeholders are filled from a value
// of Schema, rendered with Prefix under Mode.
type Site struct {
	Schema *Schema
	Prefix string
	Mode   QueryMode
}

// Template is the text of a single statement plus the binding sites needed
// to fill its parameters. Templates depend only on schemas and can be built
// once and bound many times.
type Template struct {
	Cypher string
	Sites  []Site
}

// Statement is a bound template, ready for a DBRunner.
type Statement struct {
	Cypher string
	// Params is the parameter map handed to the driver.
	Params map[string]any
	// Bindings holds the same parameters in binding order.
	Bindings []Param
}

// Bind fills the template with one value per site, in site order. A value
// may be an entity or an identifier; an entity bound to an identifier site
// is projected onto its identifier. A parameter reached from two sites must
// be given the same value by both.
func (t *Template) Bind(values ...*Entity) (*Statement, error) {
	if len(values) != len(t.Sites) {
		return nil, fmt.Errorf("template expects %d values, got %d", len(t.Sites), len(values))
	}
	st := &Statement{Cypher: t.Cypher, Params: make(map[string]any)}
	for i, site := range t.Sites {
		v := values[i]
		if v == nil {
			return nil, fmt.Errorf("binding site %d: nil value", i)
		}
		if v.schema != site.Schema && site.Schema.isID && v.schema.identifier == site.Schema {
			v = v.Identifier()
		}
		if v.schema != site.Schema {
			return nil, fmt.Errorf("binding site %d expects %s, got %s", i, site.Schema, v.schema)
		}
		params, err := v.Params(site.Prefix, site.Mode)
		if err != nil {
			return nil, err
		}
		for _, p := range params {
			// The same placeholder may be reachable from two sites, e.g. the
			// identifier and the entity of an update. Both must agree.
			if prev, dup := st.Params[p.Name]; dup {
				if !reflect.DeepEqual(prev, p.Value) {
					return nil, fmt.Errorf("binding site %d: parameter %s bound to both %v and %v", i, p.Name, prev, p.Value)
				}
				continue
			}
			st.Params[p.Name] = p.Value
			st.Bindings = append(st.Bindings, p)
		}
	}
	return st, nil
}

// String returns the statement text.
func (st *Statement) String() string {
	return st.Cypher
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n")
}
