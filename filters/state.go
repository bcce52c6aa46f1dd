package filters

import (
	"fmt"
	"slices"
)

// Category names a multi-select filter group. Values match the filter panel keys.
type Category string

// Filter categories.
const (
	CategorySeverity           Category = "severity"
	CategoryPriority           Category = "priority"
	CategoryStatus             Category = "status"
	CategoryComponents         Category = "components"
	CategoryOS                 Category = "os"
	CategoryVulnerabilityTypes Category = "vulnerability_types"
)

// Categories lists every filter category in panel order.
var Categories = []Category{
	CategorySeverity,
	CategoryPriority,
	CategoryStatus,
	CategoryComponents,
	CategoryOS,
	CategoryVulnerabilityTypes,
}

// ParseCategory validates a category name.
func ParseCategory(name string) (Category, error) {
	for _, c := range Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown filter category %q", name)
}

// ActiveFilterState holds the user's current selections. Every category is multi-select
// and keeps selection order; HasCVE is the "only CVE issues" toggle.
type ActiveFilterState struct {
	Severity           []string `json:"severity"`
	Priority           []string `json:"priority"`
	Status             []string `json:"status"`
	Components         []string `json:"components"`
	OS                 []string `json:"os"`
	VulnerabilityTypes []string `json:"vulnerability_types"`
	HasCVE             bool     `json:"has_cve"`
}

// NewActiveFilterState returns an empty selection.
func NewActiveFilterState() *ActiveFilterState {
	s := &ActiveFilterState{}
	s.Clear()
	return s
}

func (s *ActiveFilterState) field(c Category) *[]string {
	switch c {
	case CategorySeverity:
		return &s.Severity
	case CategoryPriority:
		return &s.Priority
	case CategoryStatus:
		return &s.Status
	case CategoryComponents:
		return &s.Components
	case CategoryOS:
		return &s.OS
	case CategoryVulnerabilityTypes:
		return &s.VulnerabilityTypes
	default:
		return nil
	}
}

// Selected returns the values chosen in a category, in selection order.
func (s *ActiveFilterState) Selected(c Category) []string {
	f := s.field(c)
	if f == nil {
		return nil
	}
	return *f
}

// IsSelected reports whether value is chosen in category c.
func (s *ActiveFilterState) IsSelected(c Category, value string) bool {
	return slices.Contains(s.Selected(c), value)
}

// Toggle adds value to category c, or removes it when already present.
func (s *ActiveFilterState) Toggle(c Category, value string) error {
	f := s.field(c)
	if f == nil {
		return fmt.Errorf("unknown filter category %q", c)
	}
	if i := slices.Index(*f, value); i >= 0 {
		*f = slices.Delete(*f, i, i+1)
		return nil
	}
	*f = append(*f, value)
	return nil
}

// Set replaces the selection of category c.
func (s *ActiveFilterState) Set(c Category, values []string) error {
	f := s.field(c)
	if f == nil {
		return fmt.Errorf("unknown filter category %q", c)
	}
	*f = append([]string{}, values...)
	return nil
}

// SetHasCVE sets the CVE-only toggle.
func (s *ActiveFilterState) SetHasCVE(v bool) {
	s.HasCVE = v
}

// Clear resets every category and the CVE toggle.
func (s *ActiveFilterState) Clear() {
	for _, c := range Categories {
		*s.field(c) = []string{}
	}
	s.HasCVE = false
}

// IsEmpty reports whether nothing is selected.
func (s *ActiveFilterState) IsEmpty() bool {
	for _, c := range Categories {
		if len(s.Selected(c)) > 0 {
			return false
		}
	}
	return !s.HasCVE
}

// Clone returns an independent copy.
func (s *ActiveFilterState) Clone() *ActiveFilterState {
	out := NewActiveFilterState()
	for _, c := range Categories {
		*out.field(c) = append([]string{}, s.Selected(c)...)
	}
	out.HasCVE = s.HasCVE
	return out
}

// CategorySelection adapts one category of the state to the tree's Selection interface.
func (s *ActiveFilterState) CategorySelection(c Category) Selection {
	return categorySelection{state: s, category: c}
}

type categorySelection struct {
	state    *ActiveFilterState
	category Category
}

func (c categorySelection) IsSelected(path string) bool {
	return c.state.IsSelected(c.category, path)
}

func (c categorySelection) Toggle(path string) {
	_ = c.state.Toggle(c.category, path)
}
