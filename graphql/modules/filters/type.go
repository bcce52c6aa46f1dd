// Package filters defines the GraphQL types for the filter panel.
package filters

import (
	"github.com/ciaa/ciaa-dashboard/graphql/modules/issues"
	"github.com/graphql-go/graphql"
)

// FilterOptionsType is the option catalog of every filter category
var FilterOptionsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "FilterOptions",
	Fields: graphql.Fields{
		"severities":          &graphql.Field{Type: graphql.NewList(graphql.String)},
		"priorities":          &graphql.Field{Type: graphql.NewList(graphql.String)},
		"statuses":            &graphql.Field{Type: graphql.NewList(graphql.String)},
		"components":          &graphql.Field{Type: graphql.NewList(graphql.String)},
		"os":                  &graphql.Field{Type: graphql.NewList(graphql.String)},
		"milestones":          &graphql.Field{Type: graphql.NewList(graphql.String)},
		"vulnerability_types": &graphql.Field{Type: graphql.NewList(issues.VulnerabilityTypeType)},
	},
})

// ComponentRowType is one visible row of the component tree
var ComponentRowType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ComponentRow",
	Fields: graphql.Fields{
		"label":        &graphql.Field{Type: graphql.String},
		"path":         &graphql.Field{Type: graphql.String},
		"depth":        &graphql.Field{Type: graphql.Int},
		"has_children": &graphql.Field{Type: graphql.Boolean},
		"expanded":     &graphql.Field{Type: graphql.Boolean},
		"selected":     &graphql.Field{Type: graphql.Boolean},
	},
})
