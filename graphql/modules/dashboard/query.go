package dashboard

import (
	"context"

	"github.com/ciaa/ciaa-dashboard/model"
	"github.com/ciaa/ciaa-dashboard/util"
	"github.com/graphql-go/graphql"
)

// Assembler builds the dashboard payload.
type Assembler interface {
	Dashboard(ctx context.Context) model.Dashboard
}

// GetQueryFields returns the dashboard queries to be mounted in the root schema
func GetQueryFields(svc Assembler) graphql.Fields {
	return graphql.Fields{
		"dashboard": &graphql.Field{
			Type: DashboardType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return util.JSONValue(svc.Dashboard(p.Context))
			},
		},
	}
}
