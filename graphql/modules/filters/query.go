package filters

import (
	"github.com/ciaa/ciaa-dashboard/catalog"
	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/util"
	"github.com/graphql-go/graphql"
)

// GetQueryFields returns the filter panel queries to be mounted in the root schema.
func GetQueryFields(cat *catalog.Catalog) graphql.Fields {
	return graphql.Fields{
		"filterOptions": &graphql.Field{
			Type: FilterOptionsType,
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return util.JSONValue(cat.Options())
			},
		},
		// Expansion and selection are held by the caller and sent with every query.
		"componentTree": &graphql.Field{
			Type: graphql.NewList(ComponentRowType),
			Args: graphql.FieldConfigArgument{
				"search":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				"expanded": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				"selected": &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				search, _ := p.Args["search"].(string)
				exp := filters.NewExpansion(stringList(p.Args["expanded"])...)
				sel := filters.NewSetSelection(stringList(p.Args["selected"])...)
				return util.JSONValue(cat.Tree().Rows(exp, sel, search))
			},
		},
	}
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
