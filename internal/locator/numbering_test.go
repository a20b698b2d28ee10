package locator

import "testing"

func TestParseNumberRoundTrip(t *testing.T) {
	cases := []string{"1", "1.2", "1.2.3", "10.20"}
	for _, s := range cases {
		spec := ParseNumber(s)
		if spec == nil {
			t.Fatalf("ParseNumber(%q) = nil", s)
		}
		if got := spec.Render(); got != s {
			t.Errorf("ParseNumber(%q).Render() = %q, want %q", s, got, s)
		}
	}
}

func TestParseNumberAppendix(t *testing.T) {
	spec := ParseNumber("APPENDIX A")
	if spec == nil {
		t.Fatal("ParseNumber() = nil")
	}
	if len(spec.Components) != 1 {
		t.Fatalf("len(spec.Components) = %d, want 1", len(spec.Components))
	}
	if spec.Components[0].Kind != KindAlpha {
		t.Errorf("Components[0].Kind = %v, want %v", spec.Components[0].Kind, KindAlpha)
	}
	if spec.Components[0].Value != 1 {
		t.Errorf("Components[0].Value = %d, want 1", spec.Components[0].Value)
	}
}

func TestNumberSpecCompare(t *testing.T) {
	a := ParseNumber("1")
	ab := ParseNumber("1.1")
	b := ParseNumber("2")

	if got := a.Compare(ab); got != -1 {
		t.Errorf("a.Compare(ab) = %d, want -1", got)
	}
	if got := ab.Compare(a); got != 1 {
		t.Errorf("ab.Compare(a) = %d, want 1", got)
	}
	if got := a.Compare(b); got != -1 {
		t.Errorf("a.Compare(b) = %d, want -1", got)
	}
	if got := a.Compare(ParseNumber("1")); got != 0 {
		t.Errorf("a.Compare(1) = %d, want 0", got)
	}
}

func TestNumberSpecParentAndDescendant(t *testing.T) {
	child := ParseNumber("1.2.3")
	parent := child.Parent()
	if parent == nil {
		t.Fatal("child.Parent() = nil")
	}
	if got := parent.Render(); got != "1.2" {
		t.Errorf("parent.Render() = %q, want %q", got, "1.2")
	}
	if !child.IsDescendant(parent) {
		t.Error("expected child.IsDescendant(parent) = true")
	}
	if parent.IsDescendant(child) {
		t.Error("expected parent.IsDescendant(child) = false")
	}

	top := ParseNumber("1")
	if top.Parent() != nil {
		t.Error("expected top.Parent() = nil")
	}
	if got := top.ParentKey(); got != "" {
		t.Errorf("top.ParentKey() = %q, want empty", got)
	}
}

func TestCompileFuzzyRegexMatchesSpacedVariant(t *testing.T) {
	spec := ParseNumber("1.1")
	re := CompileFuzzyRegex(spec)
	if re == nil {
		t.Fatal("CompileFuzzyRegex() = nil")
	}
	if !re.MatchString("1 . 1 scope") {
		t.Error("expected regex to match spaced variant")
	}
	if !re.MatchString("1.1 scope") {
		t.Error("expected regex to match exact variant")
	}
	if re.MatchString("1.12 scope") {
		t.Error("expected regex to not match 1.12")
	}
}

func TestExtractNumberFromLine(t *testing.T) {
	spec := ExtractNumber("1.2 Requirements")
	if spec == nil {
		t.Fatal("ExtractNumber() = nil")
	}
	if got := spec.Render(); got != "1.2" {
		t.Errorf("spec.Render() = %q, want %q", got, "1.2")
	}

	if got := ExtractNumber("General Requirements"); got != nil {
		t.Errorf("ExtractNumber() = %v, want nil", got)
	}
}
