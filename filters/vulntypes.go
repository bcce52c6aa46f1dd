// Package filters implements the filter panel logic of the dashboard: vulnerability-type
// normalization, the component tag tree, the active filter state and the query composer.
package filters

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ciaa/ciaa-dashboard/model"
	"github.com/ciaa/ciaa-dashboard/util"
)

// DefaultVulnerabilityTypeLimit is the chart size used when no limit is given.
const DefaultVulnerabilityTypeLimit = 5

// FallbackVulnerabilityTypes returns the catalog shown whenever the backend has nothing usable.
func FallbackVulnerabilityTypes() []model.VulnerabilityType {
	return []model.VulnerabilityType{
		{Type: "Use-After-Free", Count: 143},
		{Type: "Buffer Overflow", Count: 112},
		{Type: "Type Confusion", Count: 87},
		{Type: "Memory Corruption", Count: 76},
		{Type: "Cross-Site Scripting", Count: 54},
	}
}

// Shape identifies which payload layout a vulnerability-types response used.
type Shape int

// Known payload layouts, in detection priority order.
const (
	ShapeUnknown Shape = iota
	ShapeTypedList
	ShapeLabelsWithCounts
	ShapeLabelsOnly
	ShapeBareList
	ShapeCountMap
)

func (s Shape) String() string {
	switch s {
	case ShapeTypedList:
		return "types[{type,count}]"
	case ShapeLabelsWithCounts:
		return "types[]+counts{}"
	case ShapeLabelsOnly:
		return "types[]"
	case ShapeBareList:
		return "[{type|name,count}]"
	case ShapeCountMap:
		return "{label:count}"
	default:
		return "unknown"
	}
}

// Synthetic counts for label-only payloads: the first label gets syntheticTop and each
// following rank syntheticStep less, never below zero.
const (
	syntheticTop  = 100
	syntheticStep = 20
)

// member is one key/value pair of a JSON object, in wire order.
type member struct {
	key   string
	value json.RawMessage
}

// payload is the decoded top level of a response: either an object or an array.
type payload struct {
	object []member
	array  []json.RawMessage
	isObj  bool
	isArr  bool
}

func (p payload) get(key string) (json.RawMessage, bool) {
	for _, m := range p.object {
		if m.key == key {
			return m.value, true
		}
	}
	return nil, false
}

type detector struct {
	shape Shape
	match func(payload) bool
	build func(payload) []model.VulnerabilityType
}

// detectors are tried in order; the first match decides the shape.
var detectors = []detector{
	{ShapeTypedList, isTypedList, buildTypedList},
	{ShapeLabelsWithCounts, isLabelsWithCounts, buildLabelsWithCounts},
	{ShapeLabelsOnly, isLabelsOnly, buildLabelsOnly},
	{ShapeBareList, func(p payload) bool { return p.isArr }, buildBareList},
	{ShapeCountMap, func(p payload) bool { return p.isObj }, buildCountMap},
}

// DetectShape reports which layout raw uses, or ShapeUnknown.
func DetectShape(raw json.RawMessage) Shape {
	p, ok := decodePayload(raw)
	if !ok {
		return ShapeUnknown
	}
	for _, d := range detectors {
		if d.match(p) {
			return d.shape
		}
	}
	return ShapeUnknown
}

// NormalizeVulnerabilityTypes turns any supported vulnerability-types payload into an
// ordered, de-duplicated list of at most limit entries. It never fails: absent, empty,
// not-found or unusable input yields FallbackVulnerabilityTypes.
func NormalizeVulnerabilityTypes(raw json.RawMessage, limit int) []model.VulnerabilityType {
	if limit <= 0 {
		limit = DefaultVulnerabilityTypeLimit
	}
	entries := ExtractVulnerabilityTypes(raw)
	if len(entries) == 0 {
		return FallbackVulnerabilityTypes()
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	if len(entries) > limit {
		entries = entries[:limit]
	}
	entries = dedupeByLabel(entries)

	if len(entries) == 0 {
		return FallbackVulnerabilityTypes()
	}
	return entries
}

// ExtractVulnerabilityTypes decodes raw in its own order without sorting, truncation,
// de-duplication or fallback. Unusable input yields nil.
func ExtractVulnerabilityTypes(raw json.RawMessage) []model.VulnerabilityType {
	p, ok := decodePayload(raw)
	if !ok || isNotFound(p) {
		return nil
	}
	for _, d := range detectors {
		if d.match(p) {
			return d.build(p)
		}
	}
	return nil
}

// VulnerabilityTypeLabels returns the labels of a normalized list.
func VulnerabilityTypeLabels(types []model.VulnerabilityType) []string {
	labels := make([]string, 0, len(types))
	for _, t := range types {
		labels = append(labels, t.Type)
	}
	return labels
}

func dedupeByLabel(entries []model.VulnerabilityType) []model.VulnerabilityType {
	seen := make(map[string]bool, len(entries))
	out := make([]model.VulnerabilityType, 0, len(entries))
	for _, e := range entries {
		if seen[e.Type] {
			continue
		}
		seen[e.Type] = true
		out = append(out, e)
	}
	return out
}

func isNotFound(p payload) bool {
	if !p.isObj {
		return len(p.array) == 0
	}
	if len(p.object) == 0 {
		return true
	}
	if v, ok := p.get("notFound"); ok {
		var flag bool
		if json.Unmarshal(v, &flag) == nil && flag {
			return true
		}
	}
	return false
}

// Shape 1: {types: [{type, count}, ...]}
func isTypedList(p payload) bool {
	items, ok := typesArray(p)
	if !ok || len(items) == 0 {
		return false
	}
	first, ok := decodeObject(items[0])
	if !ok {
		return false
	}
	_, hasType := first.get("type")
	_, hasCount := first.get("count")
	return hasType && hasCount
}

func buildTypedList(p payload) []model.VulnerabilityType {
	items, _ := typesArray(p)
	out := make([]model.VulnerabilityType, 0, len(items))
	for _, item := range items {
		obj, ok := decodeObject(item)
		if !ok {
			continue
		}
		label := stringField(obj, "type")
		if label == "" {
			continue
		}
		count, _ := numberField(obj, "count")
		out = append(out, model.VulnerabilityType{Type: label, Count: count})
	}
	return out
}

// Shape 2: {types: [...labels], counts: {label: count}}
func isLabelsWithCounts(p payload) bool {
	if _, ok := typesArray(p); !ok {
		return false
	}
	counts, ok := p.get("counts")
	if !ok {
		return false
	}
	_, ok = decodeObject(counts)
	return ok
}

func buildLabelsWithCounts(p payload) []model.VulnerabilityType {
	items, _ := typesArray(p)
	rawCounts, _ := p.get("counts")
	counts, _ := decodeObject(rawCounts)
	out := make([]model.VulnerabilityType, 0, len(items))
	for _, item := range items {
		label := labelOf(item)
		if label == "" {
			continue
		}
		count, _ := numberField(counts, label)
		out = append(out, model.VulnerabilityType{Type: label, Count: count})
	}
	return out
}

// Shape 3: {types: [...labels]} without counts. Counts are synthetic and only
// preserve the backend's ordering.
func isLabelsOnly(p payload) bool {
	_, ok := typesArray(p)
	return ok
}

func buildLabelsOnly(p payload) []model.VulnerabilityType {
	items, _ := typesArray(p)
	labels := make([]string, 0, len(items))
	for _, item := range items {
		if label := labelOf(item); label != "" {
			labels = append(labels, label)
		}
	}
	out := make([]model.VulnerabilityType, 0, len(labels))
	for i, label := range labels {
		out = append(out, model.VulnerabilityType{Type: label, Count: max(syntheticTop-i*syntheticStep, 0)})
	}
	return out
}

// Shape 4: [{type|name, count}, ...]
func buildBareList(p payload) []model.VulnerabilityType {
	out := make([]model.VulnerabilityType, 0, len(p.array))
	for _, item := range p.array {
		obj, ok := decodeObject(item)
		if !ok {
			continue
		}
		label := stringField(obj, "type")
		if label == "" {
			label = stringField(obj, "name")
		}
		if label == "" {
			continue
		}
		count, _ := numberField(obj, "count")
		out = append(out, model.VulnerabilityType{Type: label, Count: count})
	}
	return out
}

// Shape 5: {label: count, ...}
func buildCountMap(p payload) []model.VulnerabilityType {
	out := make([]model.VulnerabilityType, 0, len(p.object))
	for _, m := range p.object {
		if m.key == "types" || m.key == "notFound" {
			continue
		}
		count, ok := asNumber(m.value)
		if !ok {
			continue
		}
		out = append(out, model.VulnerabilityType{Type: m.key, Count: count})
	}
	return out
}

func typesArray(p payload) ([]json.RawMessage, bool) {
	if !p.isObj {
		return nil, false
	}
	raw, ok := p.get("types")
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	return items, true
}

// labelOf reads a label that may be a string, a number or an object with type/name.
func labelOf(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if obj, ok := decodeObject(raw); ok {
		if label := stringField(obj, "type"); label != "" {
			return label
		}
		return stringField(obj, "name")
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return fmt.Sprint(f)
	}
	return ""
}

func stringField(p payload, key string) string {
	raw, ok := p.get(key)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func numberField(p payload, key string) (int, bool) {
	raw, ok := p.get(key)
	if !ok {
		return 0, false
	}
	return asNumber(raw)
}

func asNumber(raw json.RawMessage) (int, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return util.ClampInt(f), true
}

func decodeObject(raw json.RawMessage) (payload, bool) {
	p, ok := decodePayload(raw)
	if !ok || !p.isObj {
		return payload{}, false
	}
	return p, true
}

// decodePayload decodes the top level of raw, keeping object members in wire order
// so that equal counts keep the backend's ordering.
func decodePayload(raw json.RawMessage) (payload, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return payload{}, false
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return payload{}, false
		}
		return payload{array: items, isArr: true}, true
	case '{':
		members, err := orderedMembers(raw)
		if err != nil {
			return payload{}, false
		}
		return payload{object: members, isObj: true}, true
	default:
		return payload{}, false
	}
}

func orderedMembers(raw json.RawMessage) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		members = append(members, member{key: key, value: value})
	}
	return members, nil
}
