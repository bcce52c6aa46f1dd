package filters

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Paging defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Upstream endpoints a composed query targets.
const (
	EndpointIssues = "/issues"
	EndpointSearch = "/issues/search"
)

// SearchType scopes free-text search to one field.
type SearchType string

// Search types offered by the search bar.
const (
	SearchAll           SearchType = "all"
	SearchCVE           SearchType = "cve"
	SearchIssue         SearchType = "issue"
	SearchComponent     SearchType = "component"
	SearchVersion       SearchType = "version"
	SearchVulnerability SearchType = "vulnerability"
)

// ParseSearchType validates a search type; blank means all.
func ParseSearchType(s string) (SearchType, error) {
	switch t := SearchType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return SearchAll, nil
	case SearchAll, SearchCVE, SearchIssue, SearchComponent, SearchVersion, SearchVulnerability:
		return t, nil
	default:
		return "", fmt.Errorf("unknown search type %q", s)
	}
}

// vulnerabilityAliases carry the selected vulnerability types. The backend has accepted
// each of these names at some point, so all of them are sent together.
var vulnerabilityAliases = []string{"vulnerability_type", "vulnerability", "vuln_type", "root_cause_tag"}

// VulnerabilityParams returns the parameter names that carry vulnerability types.
func VulnerabilityParams() []string {
	return append([]string{}, vulnerabilityAliases...)
}

// QueryKind tells listing requests from search requests.
type QueryKind string

// Query kinds.
const (
	KindList   QueryKind = "list"
	KindSearch QueryKind = "search"
)

// Params are outbound query parameters.
type Params map[string]string

// Values converts the parameters into url.Values.
func (p Params) Values() url.Values {
	v := url.Values{}
	for key, value := range p {
		v.Set(key, value)
	}
	return v
}

// Keys returns the parameter names, sorted.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Query is the outbound request derived from the filter state. It is rebuilt for
// every fetch and never stored.
type Query struct {
	Kind     QueryKind `json:"kind"`
	Endpoint string    `json:"endpoint"`
	Params   Params    `json:"params"`
}

// ComposeRequest is everything the composer reads.
type ComposeRequest struct {
	Search     string
	SearchType SearchType
	Filters    *ActiveFilterState
	Page       int
	Limit      int

	// Direct lookups echoed onto listing requests.
	CveID   string
	IssueID string
	Version string
}

// Compose builds the outbound query. Free text wins; otherwise a vulnerability-type
// selection turns the request into a vulnerability search keyed on the first selected
// type; otherwise a plain listing with one parameter per category is built.
func Compose(req ComposeRequest) Query {
	filters := req.Filters
	if filters == nil {
		filters = NewActiveFilterState()
	}
	page, limit := req.Page, req.Limit
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := Params{
		"page":  strconv.Itoa(page),
		"limit": strconv.Itoa(limit),
	}
	if filters.HasCVE {
		params["has_cve"] = "true"
	}

	if term := strings.TrimSpace(req.Search); term != "" {
		searchType := req.SearchType
		if searchType == "" {
			searchType = SearchAll
		}
		params["query"] = term
		params["type"] = string(searchType)
		attachAuxiliary(params, filters)
		return Query{Kind: KindSearch, Endpoint: EndpointSearch, Params: params}
	}

	if vulns := filters.VulnerabilityTypes; len(vulns) > 0 {
		params["query"] = vulns[0]
		params["type"] = string(SearchVulnerability)
		joined := strings.Join(vulns, ",")
		for _, alias := range vulnerabilityAliases {
			params[alias] = joined
		}
		attachAuxiliary(params, filters)
		return Query{Kind: KindSearch, Endpoint: EndpointSearch, Params: params}
	}

	setJoined(params, "severity", filters.Severity)
	setJoined(params, "priority", filters.Priority)
	setJoined(params, "status", filters.Status)
	setJoined(params, "component", filters.Components)
	setJoined(params, "os", filters.OS)
	setTrimmed(params, "cve_id", req.CveID)
	setTrimmed(params, "issue_id", req.IssueID)
	setTrimmed(params, "version", req.Version)
	return Query{Kind: KindList, Endpoint: EndpointIssues, Params: params}
}

// attachAuxiliary adds the checkbox filters that search-capable backends can combine
// with a search term.
func attachAuxiliary(params Params, filters *ActiveFilterState) {
	setJoined(params, "severity", filters.Severity)
	setJoined(params, "priority", filters.Priority)
	setJoined(params, "component", filters.Components)
	setJoined(params, "os", filters.OS)
}

func setJoined(params Params, key string, values []string) {
	if len(values) > 0 {
		params[key] = strings.Join(values, ",")
	}
}

func setTrimmed(params Params, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		params[key] = value
	}
}
