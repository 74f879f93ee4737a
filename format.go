package cypherdto

import (
	"fmt"
	"strings"
)

// FormatParam formats a parameter name with an optional prefix:
// "foo" becomes "prefix_foo". An empty name stays empty.
func FormatParam(name, prefix string) string {
	if name == "" {
		return ""
	}
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

// FormatQueryFields formats names as placeholder fields, e.g. "foo: $n_foo, bar: $n_bar".
// The prefix applies to the placeholders only. Empty names are skipped.
func FormatQueryFields(names []string, prefix string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		parts = append(parts, n+": $"+FormatParam(n, prefix))
	}
	return strings.Join(parts, ", ")
}

// FormatQueryObject wraps formatted fields as "Label { fields }", or returns
// just the label when there are none.
func FormatQueryObject(label string, names []string, prefix string) string {
	return wrapObject(label, FormatQueryFields(names, prefix))
}

func wrapObject(label, fields string) string {
	if fields == "" {
		return label
	}
	return fmt.Sprintf("%s { %s }", label, fields)
}

// QueryFields renders every field of the schema under mode and joins the
// non-empty fragments.
func (s *Schema) QueryFields(prefix string, mode QueryMode) string {
	parts := make([]string, 0, len(s.fields))
	for _, f := range s.fields {
		if r := f.Render(prefix, mode); r != "" {
			parts = append(parts, r)
		}
	}
	return strings.Join(parts, ", ")
}

// QueryObject renders "Labels { fields }", or only the labels when no field
// renders under mode.
func (s *Schema) QueryObject(prefix string, mode QueryMode) string {
	return wrapObject(s.LabelString(), s.QueryFields(prefix, mode))
}

// AsQueryFields is QueryFields without a prefix in ModeRead.
func (s *Schema) AsQueryFields() string {
	return s.QueryFields("", ModeRead)
}

// AsQueryObject is QueryObject without a prefix in ModeRead.
func (s *Schema) AsQueryObject() string {
	return s.QueryObject("", ModeRead)
}
