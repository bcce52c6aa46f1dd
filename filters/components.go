package filters

import (
	"encoding/json"
	"sort"

	"github.com/ciaa/ciaa-dashboard/model"
)

// NormalizeTopComponents reads a top-vulnerable-components payload. The backend sends
// either {components: [{name, count}]} or {components: {name: count}}; the object form
// is converted to a list ordered by count, highest first. Anything else yields an empty
// list. A positive limit truncates the result.
func NormalizeTopComponents(raw json.RawMessage, limit int) []model.ComponentCount {
	out := []model.ComponentCount{}
	p, ok := decodePayload(raw)
	if !ok || !p.isObj {
		return out
	}
	field, ok := p.get("components")
	if !ok {
		return out
	}
	inner, ok := decodePayload(field)
	if !ok {
		return out
	}

	switch {
	case inner.isArr:
		for _, item := range inner.array {
			obj, ok := decodeObject(item)
			if !ok {
				continue
			}
			name := stringField(obj, "name")
			if name == "" {
				continue
			}
			count, _ := numberField(obj, "count")
			out = append(out, model.ComponentCount{Name: name, Count: count})
		}
	case inner.isObj:
		for _, m := range inner.object {
			count, ok := asNumber(m.value)
			if !ok {
				continue
			}
			out = append(out, model.ComponentCount{Name: m.key, Count: count})
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
