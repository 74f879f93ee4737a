package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/saulfrancisco-ruizacevedo/go-cypherdto"
	"github.com/spf13/cobra"
)

type renderOptions struct {
	entity string
	start  string
	end    string
}

func newRenderCommand() *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render <descriptors.yaml>",
		Short: "Print the statements of every entity in a descriptor file",
		Long: `Compile every entity of a YAML descriptor file and print its schema and
statement templates. Relationship creation is printed for the --start and
--end node entities, matched by identity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descs, err := cypherdto.LoadDescriptorFile(args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), descs, opts)
		},
	}
	cmd.Flags().StringVar(&opts.entity, "entity", "", "only render the named entity")
	cmd.Flags().StringVar(&opts.start, "start", "", "start node entity for relationship creation")
	cmd.Flags().StringVar(&opts.end, "end", "", "end node entity for relationship creation")
	return cmd
}

type namedTemplate struct {
	name  string
	build func() (*cypherdto.Template, error)
}

func render(w io.Writer, descs []*cypherdto.Descriptor, opts renderOptions) error {
	titleColor := color.New(color.FgCyan, color.Bold)
	labelColor := color.New(color.FgYellow)
	errorColor := color.New(color.FgRed)

	schemas := make(map[string]*cypherdto.Schema, len(descs))
	ordered := make([]*cypherdto.Schema, 0, len(descs))
	for _, d := range descs {
		s, err := cypherdto.Compile(d)
		if err != nil {
			return err
		}
		schemas[s.Name()] = s
		ordered = append(ordered, s)
	}

	var start, end *cypherdto.Schema
	if opts.start != "" || opts.end != "" {
		var ok bool
		if start, ok = schemas[opts.start]; !ok {
			return fmt.Errorf("unknown start entity %q", opts.start)
		}
		if end, ok = schemas[opts.end]; !ok {
			return fmt.Errorf("unknown end entity %q", opts.end)
		}
	}

	rendered := 0
	for _, s := range ordered {
		if opts.entity != "" && s.Name() != opts.entity {
			continue
		}
		rendered++

		kind := "node"
		if s.IsRelation() {
			kind = "relation"
		}
		titleColor.Fprintf(w, "%s (%s)\n", s.Name(), kind)
		fmt.Fprintf(w, "  labels:   %s\n", s.LabelString())
		fmt.Fprintf(w, "  fields:   %s\n", describeFields(s))
		fmt.Fprintf(w, "  identity: [%s]\n", strings.Join(s.IdentityFields(), ", "))

		for _, t := range templatesFor(s, start, end) {
			labelColor.Fprintf(w, "  %s:\n", t.name)
			tmpl, err := t.build()
			if err != nil {
				errorColor.Fprintf(w, "    %v\n", err)
				continue
			}
			for _, line := range strings.Split(tmpl.Cypher, "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
		fmt.Fprintln(w)
	}
	if opts.entity != "" && rendered == 0 {
		return fmt.Errorf("unknown entity %q", opts.entity)
	}
	return nil
}

func describeFields(s *cypherdto.Schema) string {
	parts := make([]string, 0, s.Len())
	for _, f := range s.Fields() {
		p := fmt.Sprintf("%s %s", f.Name, f.Type)
		if f.Stamp != cypherdto.StampNone {
			p += " (" + f.Stamp.String() + ")"
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ", ")
}

func templatesFor(s, start, end *cypherdto.Schema) []namedTemplate {
	if s.IsNode() {
		return []namedTemplate{
			{"create", s.CreateNode},
			{"read", s.ReadNode},
			{"update", s.UpdateNode},
			{"merge", s.MergeNode},
			{"delete", s.DeleteNode},
		}
	}
	ts := []namedTemplate{
		{"read", s.ReadRelation},
		{"update", s.UpdateRelation},
		{"delete", s.DeleteRelation},
		{"read all", s.ReadAllRelations},
		{"update all", s.UpdateAllRelations},
		{"delete all", s.DeleteAllRelations},
	}
	if start != nil && end != nil {
		ts = append([]namedTemplate{{"create", func() (*cypherdto.Template, error) {
			return s.CreateRelation(
				cypherdto.Endpoint{Schema: start, Mode: cypherdto.EndpointMatch},
				cypherdto.Endpoint{Schema: end, Mode: cypherdto.EndpointMatch},
			)
		}}}, ts...)
		ts = append(ts,
			namedTemplate{"read between", func() (*cypherdto.Template, error) { return s.ReadRelationBetween(start, end) }},
			namedTemplate{"update between", func() (*cypherdto.Template, error) { return s.UpdateRelationBetween(start, end) }},
			namedTemplate{"delete between", func() (*cypherdto.Template, error) { return s.DeleteRelationBetween(start, end) }},
		)
	}
	return ts
}
