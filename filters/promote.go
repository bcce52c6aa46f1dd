package filters

import (
	"strconv"
	"strings"

	"github.com/ciaa/ciaa-dashboard/model"
)

// PromoteExactMatch moves the record that exactly matches the query's issue id or CVE id
// to the front of the page. Other records keep their relative order. Listing queries look
// at issue_id, then cve_id; search queries look at a numeric query or one starting with
// "cve-". The input slice is not modified.
func PromoteExactMatch(items []model.IssueRecord, q Query) []model.IssueRecord {
	switch q.Kind {
	case KindSearch:
		term := strings.TrimSpace(q.Params["query"])
		if id, ok := parseIssueID(term); ok {
			return promote(items, matchIssueID(id))
		}
		if strings.HasPrefix(strings.ToLower(term), "cve-") {
			return promote(items, matchCVE(term))
		}
	default:
		if id, ok := parseIssueID(q.Params["issue_id"]); ok {
			if out, moved := promoteIfFound(items, matchIssueID(id)); moved {
				return out
			}
		}
		if cve := strings.TrimSpace(q.Params["cve_id"]); cve != "" {
			return promote(items, matchCVE(cve))
		}
	}
	return items
}

func parseIssueID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func matchIssueID(id int64) func(model.IssueRecord) bool {
	return func(r model.IssueRecord) bool { return r.IssueID == id }
}

func matchCVE(cve string) func(model.IssueRecord) bool {
	return func(r model.IssueRecord) bool {
		return r.CveID != "" && strings.EqualFold(r.CveID, cve)
	}
}

func promote(items []model.IssueRecord, match func(model.IssueRecord) bool) []model.IssueRecord {
	out, _ := promoteIfFound(items, match)
	return out
}

// promoteIfFound moves the first matching record to index 0.
func promoteIfFound(items []model.IssueRecord, match func(model.IssueRecord) bool) ([]model.IssueRecord, bool) {
	for i, item := range items {
		if !match(item) {
			continue
		}
		out := make([]model.IssueRecord, 0, len(items))
		out = append(out, item)
		out = append(out, items[:i]...)
		out = append(out, items[i+1:]...)
		return out, true
	}
	return items, false
}
