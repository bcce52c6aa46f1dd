// Package issues defines the GraphQL types for issues and their analyses.
package issues

import (
	"github.com/graphql-go/graphql"
)

// ComponentTagType is a component label attached to an issue
var ComponentTagType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ComponentTag",
	Fields: graphql.Fields{
		"tag": &graphql.Field{Type: graphql.String},
	},
})

// ValueType wraps the OS and milestone values of an issue
var ValueType = graphql.NewObject(graphql.ObjectConfig{
	Name: "IssueValue",
	Fields: graphql.Fields{
		"value": &graphql.Field{Type: graphql.String},
	},
})

// IssueType is one tracked security defect
var IssueType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Issue",
	Fields: graphql.Fields{
		"id":                &graphql.Field{Type: graphql.Int},
		"issue_id":          &graphql.Field{Type: graphql.Int},
		"title":             &graphql.Field{Type: graphql.String},
		"description":       &graphql.Field{Type: graphql.String},
		"severity":          &graphql.Field{Type: graphql.String},
		"priority":          &graphql.Field{Type: graphql.String},
		"status":            &graphql.Field{Type: graphql.String},
		"cve_id":            &graphql.Field{Type: graphql.String},
		"found_in":          &graphql.Field{Type: graphql.String},
		"vrp_reward":        &graphql.Field{Type: graphql.String},
		"issues_url":        &graphql.Field{Type: graphql.String},
		"component_tags":    &graphql.Field{Type: graphql.NewList(ComponentTagType)},
		"os_values":         &graphql.Field{Type: graphql.NewList(ValueType)},
		"milestone_values":  &graphql.Field{Type: graphql.NewList(ValueType)},
		"create_time":       &graphql.Field{Type: graphql.String},
		"public_time":       &graphql.Field{Type: graphql.String},
		"publish_time":      &graphql.Field{Type: graphql.String},
		"modified_time":     &graphql.Field{Type: graphql.String},
		"last_updated_time": &graphql.Field{Type: graphql.String},
	},
})

// IssuePageType is one page of a listing or search
var IssuePageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "IssuePage",
	Fields: graphql.Fields{
		"items": &graphql.Field{Type: graphql.NewList(IssueType)},
		"total": &graphql.Field{Type: graphql.Int},
		"pages": &graphql.Field{Type: graphql.Int},
	},
})

// AnalysisType is an analysis prepared for display
var AnalysisType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Analysis",
	Fields: graphql.Fields{
		"issue_id":                &graphql.Field{Type: graphql.Int},
		"overview_title":          &graphql.Field{Type: graphql.String},
		"overview_description":    &graphql.Field{Type: graphql.String},
		"cvss_base_score":         &graphql.Field{Type: graphql.Float},
		"cvss_base_score_display": &graphql.Field{Type: graphql.String},
		"severity_rating":         &graphql.Field{Type: graphql.String},
		"cvss_vector_string":      &graphql.Field{Type: graphql.String},
		"cvss_attack_vector":      &graphql.Field{Type: graphql.String},
		"cvss_privilege_required": &graphql.Field{Type: graphql.String},
		"cvss_user_interaction":   &graphql.Field{Type: graphql.String},
		"root_cause_location":     &graphql.Field{Type: graphql.String},
		"root_cause_snippet":      &graphql.Field{Type: graphql.String},
		"root_cause_analysis":     &graphql.Field{Type: graphql.String},
		"root_cause_tag":          &graphql.Field{Type: graphql.String},
		"patch_commit_id":         &graphql.Field{Type: graphql.String},
		"patch_code_change":       &graphql.Field{Type: graphql.String},
		"updated_at":              &graphql.Field{Type: graphql.String},
		"updated_display":         &graphql.Field{Type: graphql.String},
	},
})

// IssueDetailType pairs an issue with its optional analysis
var IssueDetailType = graphql.NewObject(graphql.ObjectConfig{
	Name: "IssueDetail",
	Fields: graphql.Fields{
		"issue":                &graphql.Field{Type: IssueType},
		"severity_level":       &graphql.Field{Type: graphql.String},
		"published_display":    &graphql.Field{Type: graphql.String},
		"last_updated_display": &graphql.Field{Type: graphql.String},
		"analysis":             &graphql.Field{Type: AnalysisType},
	},
})

// VulnerabilityTypeType is one vulnerability type with its issue count
var VulnerabilityTypeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "VulnerabilityType",
	Fields: graphql.Fields{
		"type":  &graphql.Field{Type: graphql.String},
		"count": &graphql.Field{Type: graphql.Int},
	},
})
