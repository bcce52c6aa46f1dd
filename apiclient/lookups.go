package apiclient

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ciaa/ciaa-dashboard/filters"
	"github.com/ciaa/ciaa-dashboard/model"
)

// ComponentTags returns the distinct component tags known to the backend.
func (c *Client) ComponentTags(ctx context.Context) ([]string, error) {
	return c.lookup(ctx, "/component-tags", "tags", "tag")
}

// OSValues returns the distinct operating systems known to the backend.
func (c *Client) OSValues(ctx context.Context) ([]string, error) {
	return c.lookup(ctx, "/os-values", "values", "value")
}

// MilestoneValues returns the distinct milestones known to the backend.
func (c *Client) MilestoneValues(ctx context.Context) ([]string, error) {
	return c.lookup(ctx, "/milestone-values", "values", "value")
}

// VulnerabilityTypes returns the full vulnerability type list in backend order. A 404 or
// an unrecognised payload yields nil.
func (c *Client) VulnerabilityTypes(ctx context.Context) ([]model.VulnerabilityType, error) {
	res, err := c.transport.Get(ctx, "/vulnerability-types", nil)
	if err != nil {
		return nil, err
	}
	if res.NotFound {
		return nil, nil
	}
	return filters.ExtractVulnerabilityTypes(res.Body), nil
}

// lookup reads a value list. The backend wraps it as {field: [...]} or sends a bare
// array; entries are strings or objects carrying the value under itemKey.
func (c *Client) lookup(ctx context.Context, endpoint, field, itemKey string) ([]string, error) {
	res, err := c.transport.Get(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if res.NotFound {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(res.Body, &items); err != nil {
		var wrapped map[string]json.RawMessage
		if err := res.Decode(&wrapped); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(wrapped[field], &items); err != nil {
			items = nil
		}
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		value := lookupValue(item, itemKey)
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	return out, nil
}

func lookupValue(raw json.RawMessage, itemKey string) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		if v, ok := obj[itemKey].(string); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
