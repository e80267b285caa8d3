package compass

import (
	"testing"

	"github.com/ppiankov/valuecompass/internal/model"
)

func TestDefault_Valid(t *testing.T) {
	tax := Default()
	if err := tax.Validate(); err != nil {
		t.Fatalf("Default taxonomy invalid: %v", err)
	}
	if len(tax.Axes()) != 40 {
		t.Errorf("Expected 40 axes, got %d", len(tax.Axes()))
	}
	if Default() != tax {
		t.Error("Expected Default to return the same instance")
	}
}

func TestDefault_ScanOrder(t *testing.T) {
	axes := Default().Axes()
	for i, a := range axes {
		wantDim := model.Dimensions[i/10]
		if a.Key.Dimension != wantDim || a.Key.Index != i%10 {
			t.Errorf("Axis %d: expected %s:%d, got %s", i, wantDim, i%10, a.Key)
		}
	}
}

func TestTaxonomy_AxesAreCopies(t *testing.T) {
	tax := Default()
	axes := tax.Axes()
	axes[0].Name = "changed"
	axes[0].Support[0] = "changed"

	a, _ := tax.Axis(axes[0].Key)
	if a.Name == "changed" || a.Support[0] == "changed" {
		t.Error("Expected taxonomy to be unaffected by caller mutation")
	}

	mods := tax.NegativeModifiers()
	mods[0] = "changed"
	if tax.NegativeModifiers()[0] == "changed" {
		t.Error("Expected modifier list to be unaffected by caller mutation")
	}
}

func TestTaxonomy_Lookup(t *testing.T) {
	tax := Default()

	a, ok := tax.Axis(EnforceKey)
	if !ok {
		t.Fatalf("Expected %s to exist", EnforceKey)
	}
	if a.Name != "Enforce" {
		t.Errorf("Expected Enforce, got %q", a.Name)
	}

	liberty, _ := tax.Axis(model.AxisKey{Dimension: what, Index: 1})
	if !contains(liberty.Support, "freedom") || !contains(liberty.Oppose, "oppression") {
		t.Errorf("Expected freedom/oppression on Liberty/Agency, got %+v", liberty)
	}

	missing := model.AxisKey{Dimension: what, Index: 10}
	if _, ok := tax.Axis(missing); ok {
		t.Error("Expected missing axis lookup to fail")
	}
	if got := tax.Name(missing); got != "what:10" {
		t.Errorf("Expected key as fallback name, got %q", got)
	}
}

func TestTaxonomy_Dimension(t *testing.T) {
	for _, d := range model.Dimensions {
		axes := Default().Dimension(d)
		if len(axes) != 10 {
			t.Errorf("%s: expected 10 axes, got %d", d, len(axes))
		}
		for i, a := range axes {
			if a.Key.Index != i {
				t.Errorf("%s: expected index %d, got %d", d, i, a.Key.Index)
			}
		}
	}
}

func TestTaxonomy_ValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		axes []model.Axis
	}{
		{"incomplete", []model.Axis{axis(what, 0, "Only", nil, nil)}},
		{"duplicate", append(Default().Axes(), axis(what, 0, "Again", nil, nil))},
		{"bad index", []model.Axis{axis(what, 12, "High", nil, nil)}},
		{"bad dimension", []model.Axis{axis("where", 0, "Nowhere", nil, nil)}},
		{"unnamed", []model.Axis{axis(what, 0, "", nil, nil)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax := newTaxonomy(tt.axes, nil, nil, nil, nil)
			if err := tax.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
