package pegc

import (
	"testing"

	"github.com/hildjj/peggy/pegvm"
)

// buildGreetingProgram assembles a two-rule program by hand, the way
// pegvm's own tests build sample programs directly against the
// Assembler rather than going through codegen: each rule matches one
// literal ("hi" or "bye"), so tests below can exercise the default and
// a named start rule, and both a successful parse and a failed one.
func buildGreetingProgram(t *testing.T) *pegvm.Program {
	t.Helper()
	asm := pegvm.NewAssembler()

	hiLit := asm.DeclareLiteral([]byte("hi"))
	byeLit := asm.DeclareLiteral([]byte("bye"))

	asm.DeclareRule("greeting", "rule.greeting", false)
	asm.DeclareRule("farewell", "rule.farewell", false)

	asm.EmitLabel("start.greeting")
	asm.EmitOp(pegvm.OpCALL.Meta(), asm.GrabLabel("rule.greeting"), nil, nil)
	asm.EmitOp(pegvm.OpEND.Meta(), nil, nil, nil)

	asm.EmitLabel("start.farewell")
	asm.EmitOp(pegvm.OpCALL.Meta(), asm.GrabLabel("rule.farewell"), nil, nil)
	asm.EmitOp(pegvm.OpEND.Meta(), nil, nil, nil)

	asm.EmitLabel("rule.greeting")
	asm.EmitOp(pegvm.OpLITB.Meta(), hiLit, nil, nil)
	asm.EmitOp(pegvm.OpRET.Meta(), nil, nil, nil)

	asm.EmitLabel("rule.farewell")
	asm.EmitOp(pegvm.OpLITB.Meta(), byeLit, nil, nil)
	asm.EmitOp(pegvm.OpRET.Meta(), nil, nil, nil)

	asm.EmitOp(pegvm.OpEND.Meta(), nil, nil, nil)

	prog, err := asm.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return prog
}

func TestParserParse(t *testing.T) {
	cases := []struct {
		name      string
		startRule string
		input     string
		wantErr   bool
	}{
		{name: "matches default start rule", input: "hi"},
		{name: "matches named start rule", startRule: "farewell", input: "bye"},
		{name: "syntax error on mismatch", input: "nope", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			prog := buildGreetingProgram(t)
			p := NewParser(prog, nil, "test.peggy")
			_, err := p.Parse([]byte(tc.input), ParseOptions{StartRule: tc.startRule})
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q): expected error, got none", tc.input)
				}
				if _, ok := err.(*ParseError); !ok {
					t.Fatalf("Parse(%q): expected *ParseError, got %T: %v", tc.input, err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): unexpected error: %v", tc.input, err)
			}
		})
	}
}

func TestParserAllowedStartRules(t *testing.T) {
	prog := buildGreetingProgram(t)
	p := NewParser(prog, []string{"greeting"}, "test.peggy")

	if _, err := p.Parse([]byte("hi"), ParseOptions{}); err != nil {
		t.Fatalf("allowed start rule: unexpected error: %v", err)
	}

	_, err := p.Parse([]byte("bye"), ParseOptions{StartRule: "farewell"})
	if err == nil {
		t.Fatal("disallowed start rule: expected a ConfigError, got none")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("disallowed start rule: expected *ConfigError, got %T: %v", err, err)
	}
}

func TestParserLibraryMode(t *testing.T) {
	prog := buildGreetingProgram(t)
	p := NewParser(prog, nil, "test.peggy")

	lib, err := p.ParseLibrary([]byte("nope"), ParseOptions{})
	if err != nil {
		t.Fatalf("ParseLibrary: unexpected error: %v", err)
	}
	if lib.Success {
		t.Fatal("ParseLibrary: expected Success == false")
	}
	if lib.Throw == nil {
		t.Fatal("ParseLibrary: expected a non-nil Throw")
	}
	if err := lib.Throw(); err == nil {
		t.Fatal("Throw: expected an error")
	}
}

type recordingTracer struct {
	events []Event
}

func (r *recordingTracer) Trace(e Event) {
	r.events = append(r.events, e)
}

func TestParserTracing(t *testing.T) {
	prog := buildGreetingProgram(t)
	p := NewParser(prog, nil, "test.peggy")

	var tracer recordingTracer
	if _, err := p.Parse([]byte("hi"), ParseOptions{Tracer: &tracer}); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if len(tracer.events) != 2 {
		t.Fatalf("Trace: expected 2 events (enter, match), got %d: %+v", len(tracer.events), tracer.events)
	}
	if tracer.events[0].Type != EventRuleEnter || tracer.events[0].Rule != "greeting" {
		t.Errorf("Trace[0] = %+v, want rule.enter for greeting", tracer.events[0])
	}
	if tracer.events[1].Type != EventRuleMatch || tracer.events[1].Rule != "greeting" {
		t.Errorf("Trace[1] = %+v, want rule.match for greeting", tracer.events[1])
	}
}

func TestParserResultCache(t *testing.T) {
	prog := buildGreetingProgram(t)
	p := NewParser(prog, nil, "test.peggy", WithResultCache(8))

	if _, err := p.Parse([]byte("hi"), ParseOptions{}); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if p.resultCache.Len() != 1 {
		t.Fatalf("resultCache.Len() = %d, want 1", p.resultCache.Len())
	}
	if _, err := p.Parse([]byte("hi"), ParseOptions{}); err != nil {
		t.Fatalf("Parse (cached): unexpected error: %v", err)
	}
	if p.resultCache.Len() != 1 {
		t.Fatalf("resultCache.Len() after repeat parse = %d, want 1", p.resultCache.Len())
	}
}
