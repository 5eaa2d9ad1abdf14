package llm

import (
	"context"
	"errors"
	"testing"
)

// scripted fake for the repair path
type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(_ context.Context, _ Request) (string, error) {
	f.calls++
	return f.response, f.err
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounded", "Hier is de output:\n{\"a\":1}\nEinde.", `{"a":1}`},
		{"nested braces", `tekst {"a":{"b":2}} naschrift`, `{"a":{"b":2}}`},
	}
	for _, c := range cases {
		got, err := ExtractJSON(c.in)
		if err != nil {
			t.Errorf("%s: ExtractJSON() error: %v", c.name, err)
			continue
		}
		if string(got) != c.want {
			t.Errorf("%s: ExtractJSON() = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestExtractJSONNoObject(t *testing.T) {
	for _, in := range []string{"", "geen json hier", "} {", `{"broken":`} {
		if _, err := ExtractJSON(in); !errors.Is(err, ErrNoJSON) {
			t.Errorf("ExtractJSON(%q) error = %v, want ErrNoJSON", in, err)
		}
	}
}

func TestDecodeCleanOutput(t *testing.T) {
	repair := &fakeCompleter{}
	codec := NewCodec(repair)

	var out struct {
		Suitable bool   `json:"suitable"`
		Reason   string `json:"reason"`
	}
	raw := "```json\n{\"suitable\": true, \"reason\": \"prima\"}\n```"
	if err := codec.Decode(context.Background(), raw, `{"suitable": true, "reason": "string"}`, &out); err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !out.Suitable || out.Reason != "prima" {
		t.Errorf("Decode() = %+v", out)
	}
	if repair.calls != 0 {
		t.Errorf("repair called %d times for clean output, want 0", repair.calls)
	}
}

func TestDecodeRepairsOnce(t *testing.T) {
	repair := &fakeCompleter{response: `{"category": "politiek"}`}
	codec := NewCodec(repair)

	var out struct {
		Category string `json:"category"`
	}
	err := codec.Decode(context.Background(), "categorie is politiek denk ik", `{"category": "string"}`, &out)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if out.Category != "politiek" {
		t.Errorf("Decode() category = %q", out.Category)
	}
	if repair.calls != 1 {
		t.Errorf("repair called %d times, want 1", repair.calls)
	}
}

func TestDecodeRepairFailureIsTerminal(t *testing.T) {
	repair := &fakeCompleter{response: "nog steeds geen json"}
	codec := NewCodec(repair)

	var out map[string]any
	if err := codec.Decode(context.Background(), "ruis", `{}`, &out); err == nil {
		t.Error("Decode() should fail when repair produces no object")
	}
	if repair.calls != 1 {
		t.Errorf("repair called %d times, want exactly 1", repair.calls)
	}
}

func TestDecodeRepairErrorPropagates(t *testing.T) {
	repair := &fakeCompleter{err: errors.New("upstream down")}
	codec := NewCodec(repair)

	var out map[string]any
	if err := codec.Decode(context.Background(), "ruis", `{}`, &out); err == nil {
		t.Error("Decode() should propagate a repair call error")
	}
}
