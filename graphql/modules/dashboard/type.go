// Package dashboard defines the GraphQL types for the home page dashboard.
package dashboard

import (
	"github.com/ciaa/ciaa-dashboard/graphql/modules/issues"
	"github.com/graphql-go/graphql"
)

// ComponentCountType represents a row of the "top vulnerable components" chart
var ComponentCountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ComponentCount",
	Fields: graphql.Fields{
		"name":  &graphql.Field{Type: graphql.String},
		"count": &graphql.Field{Type: graphql.Int},
	},
})

// DashboardType represents the assembled home page: the top cards, both charts and the
// recent issue list
var DashboardType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Dashboard",
	Fields: graphql.Fields{
		"totalIssues":           &graphql.Field{Type: graphql.Int},
		"cveIssues":             &graphql.Field{Type: graphql.Int},
		"fixedIssues":           &graphql.Field{Type: graphql.Int},
		"recentlyAddedIssues":   &graphql.Field{Type: graphql.Int},
		"topComponents":         &graphql.Field{Type: graphql.NewList(ComponentCountType)},
		"topVulnerabilityTypes": &graphql.Field{Type: graphql.NewList(issues.VulnerabilityTypeType)},
		"recentIssues":          &graphql.Field{Type: graphql.NewList(issues.IssueType)},
		"warning":               &graphql.Field{Type: graphql.String},
	},
})
