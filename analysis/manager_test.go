package analysis

import (
	"strings"
	"testing"

	"github.com/hildjj/peggy/dslparser"
)

func parse(t *testing.T, src string) *context {
	t.Helper()
	g, err := dslparser.Parse("test.peggy", src)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	rules := indexRules(g)
	return &context{
		Grammar:    g,
		Rules:      rules,
		Empty:      computeEmptiness(g, rules),
		StartRules: expandStartRules(g, nil),
	}
}

func collect(ctx *context, pass func(*context, func(Problem))) Problems {
	var found Problems
	pass(ctx, func(p Problem) { found = append(found, p) })
	return found
}

func TestUndefinedRuleReported(t *testing.T) {
	ctx := parse(t, `start = missing;`)
	got := collect(ctx, checkUndefinedRules)
	if len(got) != 1 || got[0].Severity != SeverityError {
		t.Fatalf("got %v, want one error", got)
	}
}

func TestUndefinedRuleSuggestsClosestName(t *testing.T) {
	ctx := parse(t, `start = strt; other = "x";`)
	got := collect(ctx, checkUndefinedRules)
	if len(got) != 1 {
		t.Fatalf("got %d problems, want 1", len(got))
	}
	if want := `did you mean "start"?`; !strings.Contains(got[0].Message, want) {
		t.Errorf("Message = %q, want to contain %q", got[0].Message, want)
	}
}

func TestLibraryRefIsNotUndefined(t *testing.T) {
	ctx := parse(t, `
import lib from "lib.peggy";
start = lib.Rule;
`)
	if got := collect(ctx, checkUndefinedRules); len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
}

func TestDuplicateRuleReported(t *testing.T) {
	ctx := parse(t, `start = "a"; start = "b";`)
	got := collect(ctx, checkDuplicates)
	if len(got) != 1 || got[0].Severity != SeverityError {
		t.Fatalf("got %v, want one error", got)
	}
}

func TestInfiniteLoopOnEmptyBody(t *testing.T) {
	ctx := parse(t, `start = ""*;`)
	got := collect(ctx, checkInfiniteLoops)
	if len(got) != 1 {
		t.Fatalf("got %v, want one error", got)
	}
}

func TestBoundedRepeatedWithEmptyBodyIsFine(t *testing.T) {
	ctx := parse(t, `start = ""|3|;`)
	if got := collect(ctx, checkInfiniteLoops); len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
}

func TestNonEmptyZeroOrMoreIsFine(t *testing.T) {
	ctx := parse(t, `start = "a"*;`)
	if got := collect(ctx, checkInfiniteLoops); len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
}

func TestLeftRecursionDetected(t *testing.T) {
	ctx := parse(t, `start = start "a" / "b";`)
	got := collect(ctx, checkLeftRecursion)
	if len(got) != 1 || got[0].Severity != SeverityError {
		t.Fatalf("got %v, want one error", got)
	}
}

func TestLeftRecursionThroughEmptyPrefix(t *testing.T) {
	ctx := parse(t, `
start = mid "x";
mid = ""? start;
`)
	got := collect(ctx, checkLeftRecursion)
	if len(got) == 0 {
		t.Fatalf("got none, want left-recursion error")
	}
}

func TestRightRecursionIsFine(t *testing.T) {
	ctx := parse(t, `start = "a" start / "b";`)
	if got := collect(ctx, checkLeftRecursion); len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
}

func TestBarePluckOutsideSequenceRejected(t *testing.T) {
	ctx := parse(t, `start = @"x";`)
	got := collect(ctx, checkPlucks)
	if len(got) != 1 || got[0].Severity != SeverityError {
		t.Fatalf("got %v, want one error", got)
	}
}

func TestPluckInsideSequenceIsFine(t *testing.T) {
	ctx := parse(t, `start = "a" @"b";`)
	if got := collect(ctx, checkPlucks); len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
}

func TestPluckOverriddenByActionIsError(t *testing.T) {
	ctx := parse(t, `start = "a" @"b" { return 1 };`)
	got := collect(ctx, checkPlucks)
	if len(got) != 1 || got[0].Severity != SeverityError {
		t.Fatalf("got %v, want one error", got)
	}
}

func TestDuplicateLabelInSameSequenceRejected(t *testing.T) {
	ctx := parse(t, `start = a:"x" a:"y";`)
	got := collect(ctx, checkDuplicateLabels)
	if len(got) != 1 || got[0].Severity != SeverityError {
		t.Fatalf("got %v, want one error", got)
	}
}

func TestSameLabelInDifferentChoiceAlternativesIsFine(t *testing.T) {
	ctx := parse(t, `start = (a:"x") / (a:"y");`)
	if got := collect(ctx, checkDuplicateLabels); len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
}

func TestSameLabelInNestedSequenceIsFine(t *testing.T) {
	ctx := parse(t, `start = a:"x" ("y" a:"z");`)
	if got := collect(ctx, checkDuplicateLabels); len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
}

func TestUnusedRuleWarns(t *testing.T) {
	ctx := parse(t, `start = "a"; dead = "b";`)
	got := collect(ctx, checkUnusedRules)
	if len(got) != 1 || got[0].Severity != SeverityWarning {
		t.Fatalf("got %v, want one warning", got)
	}
}

func TestUnusedRuleReachableFromAnotherStartRuleIsFine(t *testing.T) {
	ctx := parse(t, `start = "a"; other = "b";`)
	ctx.StartRules = expandStartRules(ctx.Grammar, []string{"start", "other"})
	if got := collect(ctx, checkUnusedRules); len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
}

func TestAllowedStartRuleMustExist(t *testing.T) {
	ctx := parse(t, `start = "a";`)
	ctx.StartRules = expandStartRules(ctx.Grammar, []string{"missing"})
	got := collect(ctx, checkAllowedStartRules)
	if len(got) != 1 || got[0].Severity != SeverityError {
		t.Fatalf("got %v, want one error", got)
	}
}

func TestRepetitionMaxLessThanMinRejected(t *testing.T) {
	ctx := parse(t, `start = "a"|5..2|;`)
	got := collect(ctx, checkRepetitionBounds)
	if len(got) != 1 {
		t.Fatalf("got %v, want one error", got)
	}
}

func TestRepetitionMaxZeroRejected(t *testing.T) {
	ctx := parse(t, `start = "a"|0|;`)
	got := collect(ctx, checkRepetitionBounds)
	if len(got) != 1 {
		t.Fatalf("got %v, want one error", got)
	}
}

func TestRepetitionInRangeIsFine(t *testing.T) {
	ctx := parse(t, `start = "a"|2..5|;`)
	if got := collect(ctx, checkRepetitionBounds); len(got) != 0 {
		t.Fatalf("got %v, want none", got)
	}
}

func TestManagerAbortsAfterFirstFailingPass(t *testing.T) {
	m := NewManager()
	g, err := dslparser.Parse("test.peggy", `start = missing; start = "b";`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	problems := m.Run(g, nil)
	if !problems.HasErrors() {
		t.Fatal("want at least one error")
	}
	// checkDuplicates runs after checkUndefinedRules in the standard
	// pass order, so its duplicate-rule finding must never appear: the
	// manager stops at the first pass that reports an error.
	for _, p := range problems {
		if p.Pass == "duplicates" {
			t.Errorf("pass %q ran after an earlier pass failed", p.Pass)
		}
	}
}

func TestManagerRunsCleanGrammarWithNoProblems(t *testing.T) {
	m := NewManager()
	g, err := dslparser.Parse("test.peggy", `start = "a"+;`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if problems := m.Run(g, nil); len(problems) != 0 {
		t.Fatalf("got %v, want none", problems)
	}
}

func TestInferResultTypes(t *testing.T) {
	g, err := dslparser.Parse("test.peggy", `
start = word+;
word = letters:$[a-z]+ { return letters };
lit = "x";
`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	types := InferResultTypes(g)
	if types["start"] != TypeArray {
		t.Errorf("start = %v, want array", types["start"])
	}
	if types["word"] != TypeCustom {
		t.Errorf("word = %v, want custom", types["word"])
	}
	if types["lit"] != TypeString {
		t.Errorf("lit = %v, want string", types["lit"])
	}
}

