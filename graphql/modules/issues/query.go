package issues

import (
	"context"
	"errors"
	"fmt"

	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/internal/services"
	"github.com/ciaa/ciaa-dashboard/model"
	"github.com/ciaa/ciaa-dashboard/util"
	"github.com/graphql-go/graphql"
)

// Source is the part of the backend client the issue queries use.
type Source interface {
	Fetch(ctx context.Context, q filters.Query) (model.IssuePage, error)
	IssuesBySeverity(ctx context.Context, severity string, limit int) (model.IssuePage, error)
	IssuesByComponent(ctx context.Context, component string, limit int) (model.IssuePage, error)
	IssuesByVulnerabilityType(ctx context.Context, vulnType string, limit int) (model.IssuePage, error)
	HighCVSSIssues(ctx context.Context, minScore float64, limit int) (model.IssuePage, error)
	TopVulnerabilityTypes(ctx context.Context, limit int) []model.VulnerabilityType
}

// filterArgs maps listing arguments onto filter categories.
var filterArgs = map[string]filters.Category{
	"severity":           filters.CategorySeverity,
	"priority":           filters.CategoryPriority,
	"status":             filters.CategoryStatus,
	"component":          filters.CategoryComponents,
	"os":                 filters.CategoryOS,
	"vulnerability_type": filters.CategoryVulnerabilityTypes,
}

// GetQueryFields returns the issue queries to be mounted in the root schema.
func GetQueryFields(source Source, svc *services.IssueService) graphql.Fields {
	listArgs := graphql.FieldConfigArgument{
		"search":   &graphql.ArgumentConfig{Type: graphql.String},
		"type":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(filters.SearchAll)},
		"has_cve":  &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
		"page":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: filters.DefaultPage},
		"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: filters.DefaultLimit},
		"cve_id":   &graphql.ArgumentConfig{Type: graphql.String},
		"issue_id": &graphql.ArgumentConfig{Type: graphql.String},
		"version":  &graphql.ArgumentConfig{Type: graphql.String},
	}
	for name := range filterArgs {
		listArgs[name] = &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)}
	}

	return graphql.Fields{
		"issues": &graphql.Field{
			Type: IssuePageType,
			Args: listArgs,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				req, err := composeRequest(p.Args)
				if err != nil {
					return nil, err
				}
				page, err := source.Fetch(p.Context, filters.Compose(req))
				if err != nil {
					return nil, err
				}
				return util.JSONValue(page)
			},
		},
		"issue": &graphql.Field{
			Type: IssueDetailType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				detail, err := svc.IssueDetail(p.Context, p.Args["id"].(string))
				if err != nil {
					return nil, presentable(err)
				}
				return util.JSONValue(detail)
			},
		},
		"analysis": &graphql.Field{
			Type: AnalysisType,
			Args: graphql.FieldConfigArgument{
				"issue_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				view, err := svc.Analysis(p.Context, p.Args["issue_id"].(string))
				if services.IsNoAnalysis(err) {
					return nil, nil
				}
				if err != nil {
					return nil, presentable(err)
				}
				return util.JSONValue(view)
			},
		},
		"issuesBySeverity": byValue("severity", func(ctx context.Context, v string, limit int) (model.IssuePage, error) {
			return source.IssuesBySeverity(ctx, v, limit)
		}),
		"issuesByComponent": byValue("component", func(ctx context.Context, v string, limit int) (model.IssuePage, error) {
			return source.IssuesByComponent(ctx, v, limit)
		}),
		"issuesByVulnerabilityType": byValue("type", func(ctx context.Context, v string, limit int) (model.IssuePage, error) {
			return source.IssuesByVulnerabilityType(ctx, v, limit)
		}),
		"highCvssIssues": &graphql.Field{
			Type: IssuePageType,
			Args: graphql.FieldConfigArgument{
				"min_score": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 7.0},
				"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: filters.DefaultLimit},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				page, err := source.HighCVSSIssues(p.Context, p.Args["min_score"].(float64), p.Args["limit"].(int))
				if err != nil {
					return nil, err
				}
				return util.JSONValue(page)
			},
		},
		"topVulnerabilityTypes": &graphql.Field{
			Type: graphql.NewList(VulnerabilityTypeType),
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: filters.DefaultVulnerabilityTypeLimit},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return util.JSONValue(source.TopVulnerabilityTypes(p.Context, p.Args["limit"].(int)))
			},
		},
	}
}

func byValue(arg string, fetch func(ctx context.Context, value string, limit int) (model.IssuePage, error)) *graphql.Field {
	return &graphql.Field{
		Type: IssuePageType,
		Args: graphql.FieldConfigArgument{
			arg:     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: filters.DefaultLimit},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			page, err := fetch(p.Context, p.Args[arg].(string), p.Args["limit"].(int))
			if err != nil {
				return nil, err
			}
			return util.JSONValue(page)
		},
	}
}

func composeRequest(args map[string]interface{}) (filters.ComposeRequest, error) {
	searchType, err := filters.ParseSearchType(stringArg(args, "type"))
	if err != nil {
		return filters.ComposeRequest{}, err
	}

	state := filters.NewActiveFilterState()
	for name, category := range filterArgs {
		if err := state.Set(category, stringList(args[name])); err != nil {
			return filters.ComposeRequest{}, err
		}
	}
	if hasCVE, ok := args["has_cve"].(bool); ok {
		state.SetHasCVE(hasCVE)
	}

	page, _ := args["page"].(int)
	limit, _ := args["limit"].(int)
	if page < 1 || limit < 1 {
		return filters.ComposeRequest{}, fmt.Errorf("page and limit must be positive")
	}

	return filters.ComposeRequest{
		Search:     stringArg(args, "search"),
		SearchType: searchType,
		Filters:    state,
		Page:       page,
		Limit:      limit,
		CveID:      stringArg(args, "cve_id"),
		IssueID:    stringArg(args, "issue_id"),
		Version:    stringArg(args, "version"),
	}, nil
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// presentable hides the underlying error chain behind the load message.
func presentable(err error) error {
	var loadErr *services.LoadError
	if errors.As(err, &loadErr) {
		return errors.New(loadErr.Message)
	}
	return err
}
