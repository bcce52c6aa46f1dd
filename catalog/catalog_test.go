package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/ciaa/ciaa-dashboard/model"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

type fakeSource struct {
	tags       []string
	os         []string
	milestones []string
	types      []model.VulnerabilityType
	err        error
}

func (f fakeSource) ComponentTags(context.Context) ([]string, error) { return f.tags, f.err }
func (f fakeSource) OSValues(context.Context) ([]string, error)      { return f.os, nil }
func (f fakeSource) MilestoneValues(context.Context) ([]string, error) {
	return f.milestones, nil
}
func (f fakeSource) VulnerabilityTypes(context.Context) ([]model.VulnerabilityType, error) {
	return f.types, f.err
}

func TestNew_Defaults(t *testing.T) {
	c := New(fakeSource{}, zap.NewNop())
	opts := c.Options()

	if diff := cmp.Diff(DefaultSeverities, opts.Severities); diff != "" {
		t.Errorf("severities mismatch (-want +got):\n%s", diff)
	}
	if len(opts.VulnerabilityTypes) != 10 {
		t.Errorf("vulnerability types = %d, want 10", len(opts.VulnerabilityTypes))
	}
	if c.Tree() == nil || c.Tree().HasChildren() {
		t.Error("default tree should be an empty root")
	}
}

func TestRefresh_LoadsSources(t *testing.T) {
	c := New(fakeSource{
		tags:       []string{"Blink>DOM", "Blink>Layout", "UI"},
		os:         []string{"Linux"},
		milestones: []string{"M118", "beta", "M120"},
		types:      []model.VulnerabilityType{{Type: "Race Condition"}, {Type: "Race Condition"}, {Type: "Double Free"}},
	}, zap.NewNop())

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	opts := c.Options()

	if diff := cmp.Diff([]string{"M120", "M118", "beta"}, opts.Milestones); diff != "" {
		t.Errorf("milestones mismatch (-want +got):\n%s", diff)
	}
	want := []model.VulnerabilityType{{Type: "Race Condition"}, {Type: "Double Free"}}
	if diff := cmp.Diff(want, opts.VulnerabilityTypes); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Blink", "Blink>DOM", "Blink>Layout", "UI"}, c.Tree().Paths()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestRefresh_FailingSourceKeepsDefaults(t *testing.T) {
	c := New(fakeSource{os: []string{"Mac"}, err: errors.New("boom")}, zap.NewNop())

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	opts := c.Options()
	if len(opts.Components) != 0 {
		t.Errorf("components = %v, want empty", opts.Components)
	}
	if len(opts.VulnerabilityTypes) != len(DefaultVulnerabilityTypes) {
		t.Errorf("vulnerability types = %d, want defaults", len(opts.VulnerabilityTypes))
	}
	if diff := cmp.Diff([]string{"Mac"}, opts.OS); diff != "" {
		t.Errorf("os mismatch (-want +got):\n%s", diff)
	}
}

func TestOptions_ReturnsCopy(t *testing.T) {
	c := New(fakeSource{}, zap.NewNop())
	opts := c.Options()
	opts.Severities[0] = "changed"

	if c.Options().Severities[0] != "Critical" {
		t.Error("Options must not expose internal slices")
	}
}

func TestRefresh_CanceledContext(t *testing.T) {
	c := New(fakeSource{tags: []string{"V8"}}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Refresh(ctx); err == nil {
		t.Fatal("expected context error")
	}
	if len(c.Options().Components) != 0 {
		t.Error("canceled refresh must not install a snapshot")
	}
}
