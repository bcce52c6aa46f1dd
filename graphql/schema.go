// Package graphql assembles the root GraphQL schema from the per-domain modules.
package graphql

import (
	"github.com/ciaa/ciaa-dashboard/catalog"
	"github.com/ciaa/ciaa-dashboard/graphql/modules/dashboard"
	"github.com/ciaa/ciaa-dashboard/graphql/modules/filters"
	"github.com/ciaa/ciaa-dashboard/graphql/modules/issues"
	"github.com/ciaa/ciaa-dashboard/internal/services"
	"github.com/graphql-go/graphql"
)

// Deps are the services the resolvers read from.
type Deps struct {
	Issues    issues.Source
	IssueSvc  *services.IssueService
	Dashboard dashboard.Assembler
	Catalog   *catalog.Catalog
}

// CreateSchema builds the root query from every module.
func CreateSchema(deps Deps) (graphql.Schema, error) {
	fields := graphql.Fields{}
	for _, module := range []graphql.Fields{
		dashboard.GetQueryFields(deps.Dashboard),
		issues.GetQueryFields(deps.Issues, deps.IssueSvc),
		filters.GetQueryFields(deps.Catalog),
	} {
		for name, field := range module {
			fields[name] = field
		}
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})
	return graphql.NewSchema(graphql.SchemaConfig{Query: rootQuery})
}
