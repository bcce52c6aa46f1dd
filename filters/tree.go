package filters

import (
	"sort"
	"strings"
)

// PathDelimiter separates the levels of a component tag, e.g. "UI>Browser>Accessibility".
const PathDelimiter = ">"

// TreeNode is one level of the component hierarchy. Path is the node's identity: the
// non-empty segments from the root down to this node joined with PathDelimiter.
type TreeNode struct {
	Label    string      `json:"label"`
	Path     string      `json:"path"`
	Children []*TreeNode `json:"children,omitempty"`

	index map[string]*TreeNode
}

// SplitPath returns the trimmed, non-empty segments of a component path.
func SplitPath(path string) []string {
	var segments []string
	for _, part := range strings.Split(path, PathDelimiter) {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// BuildTree builds the component hierarchy from delimited paths. The returned root has
// an empty label and path; children at every level are sorted by label.
func BuildTree(paths []string) *TreeNode {
	root := &TreeNode{index: map[string]*TreeNode{}}
	byPath := map[string]map[string]*TreeNode{"": {}}

	for _, p := range paths {
		parent := root
		for _, segment := range SplitPath(p) {
			full := segment
			if parent.Path != "" {
				full = parent.Path + PathDelimiter + segment
			}
			siblings := byPath[parent.Path]
			node, ok := siblings[segment]
			if !ok {
				node = &TreeNode{Label: segment, Path: full}
				siblings[segment] = node
				byPath[full] = map[string]*TreeNode{}
				root.index[full] = node
			}
			parent = node
		}
	}

	var attach func(n *TreeNode)
	attach = func(n *TreeNode) {
		children := byPath[n.Path]
		n.Children = make([]*TreeNode, 0, len(children))
		for _, child := range children {
			n.Children = append(n.Children, child)
		}
		sort.Slice(n.Children, func(i, j int) bool { return n.Children[i].Label < n.Children[j].Label })
		for _, child := range n.Children {
			attach(child)
		}
	}
	attach(root)
	return root
}

// HasChildren reports whether the node has sub-components.
func (n *TreeNode) HasChildren() bool {
	return len(n.Children) > 0
}

// Find returns the node with the given full path, or nil. It is only valid on a root
// returned by BuildTree.
func (n *TreeNode) Find(path string) *TreeNode {
	if n.index == nil {
		return nil
	}
	return n.index[strings.Join(SplitPath(path), PathDelimiter)]
}

// Walk visits every node below n in display order (sorted pre-order).
func (n *TreeNode) Walk(fn func(node *TreeNode, depth int)) {
	var walk func(node *TreeNode, depth int)
	walk = func(node *TreeNode, depth int) {
		for _, child := range node.Children {
			fn(child, depth)
			walk(child, depth+1)
		}
	}
	walk(n, 0)
}

// Paths returns the full path of every node in display order.
func (n *TreeNode) Paths() []string {
	var out []string
	n.Walk(func(node *TreeNode, _ int) { out = append(out, node.Path) })
	return out
}

// Search returns, as a flat list in display order, every node whose full path contains
// term case-insensitively. Ancestors and descendants of a match are not implied.
func (n *TreeNode) Search(term string) []string {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := []string{}
	if needle == "" {
		return out
	}
	n.Walk(func(node *TreeNode, _ int) {
		if strings.Contains(strings.ToLower(node.Path), needle) {
			out = append(out, node.Path)
		}
	})
	return out
}

// Selection is owned by the caller; the tree only reads and toggles it, so selections
// survive rebuilding the tree from a refreshed catalog.
type Selection interface {
	IsSelected(path string) bool
	Toggle(path string)
}

// Toggle forwards a checkbox change for a known node to sel. It reports false when the
// path is not part of the tree.
func (n *TreeNode) Toggle(path string, sel Selection) bool {
	node := n.Find(path)
	if node == nil {
		return false
	}
	sel.Toggle(node.Path)
	return true
}

// Expansion tracks which branches of the tree are open, keyed by full path.
type Expansion struct {
	open map[string]bool
}

// NewExpansion returns an expansion state with the given paths open.
func NewExpansion(paths ...string) *Expansion {
	e := &Expansion{open: map[string]bool{}}
	for _, p := range paths {
		e.Expand(p)
	}
	return e
}

// Expand opens a branch.
func (e *Expansion) Expand(path string) {
	if key := canonicalPath(path); key != "" {
		e.open[key] = true
	}
}

// Collapse closes a branch.
func (e *Expansion) Collapse(path string) {
	delete(e.open, canonicalPath(path))
}

// Toggle flips a branch and returns its new state.
func (e *Expansion) Toggle(path string) bool {
	if e.IsExpanded(path) {
		e.Collapse(path)
		return false
	}
	e.Expand(path)
	return true
}

// IsExpanded reports whether a branch is open.
func (e *Expansion) IsExpanded(path string) bool {
	if e == nil {
		return false
	}
	return e.open[canonicalPath(path)]
}

// Paths returns the open branches, sorted.
func (e *Expansion) Paths() []string {
	out := make([]string, 0, len(e.open))
	for p := range e.open {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func canonicalPath(path string) string {
	return strings.Join(SplitPath(path), PathDelimiter)
}

// Row is one rendered line of the component filter.
type Row struct {
	Label       string `json:"label"`
	Path        string `json:"path"`
	Depth       int    `json:"depth"`
	HasChildren bool   `json:"has_children"`
	Expanded    bool   `json:"expanded"`
	Selected    bool   `json:"selected"`
}

// Rows renders the component filter. Without a search term it yields the visible part
// of the hierarchy (children of collapsed branches are hidden). With a term it yields a
// flat list of matching paths labelled by their full path.
func (n *TreeNode) Rows(exp *Expansion, sel Selection, term string) []Row {
	selected := func(path string) bool { return sel != nil && sel.IsSelected(path) }

	rows := []Row{}
	if strings.TrimSpace(term) != "" {
		for _, path := range n.Search(term) {
			rows = append(rows, Row{Label: path, Path: path, Selected: selected(path)})
		}
		return rows
	}

	var visit func(node *TreeNode, depth int)
	visit = func(node *TreeNode, depth int) {
		for _, child := range node.Children {
			expanded := exp.IsExpanded(child.Path)
			rows = append(rows, Row{
				Label:       child.Label,
				Path:        child.Path,
				Depth:       depth,
				HasChildren: child.HasChildren(),
				Expanded:    expanded,
				Selected:    selected(child.Path),
			})
			if expanded {
				visit(child, depth+1)
			}
		}
	}
	visit(n, 0)
	return rows
}

// SetSelection is a Selection backed by a plain set, for stateless callers.
type SetSelection struct {
	paths map[string]bool
}

// NewSetSelection returns a selection containing paths.
func NewSetSelection(paths ...string) *SetSelection {
	s := &SetSelection{paths: map[string]bool{}}
	for _, p := range paths {
		if key := canonicalPath(p); key != "" {
			s.paths[key] = true
		}
	}
	return s
}

// IsSelected reports whether path is in the set.
func (s *SetSelection) IsSelected(path string) bool {
	return s.paths[canonicalPath(path)]
}

// Toggle adds or removes path.
func (s *SetSelection) Toggle(path string) {
	key := canonicalPath(path)
	if s.paths[key] {
		delete(s.paths, key)
		return
	}
	s.paths[key] = true
}
