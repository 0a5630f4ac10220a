package translate

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeGenerator struct {
	calls     int
	lastInput string
	respond   func(prompt string) (string, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.lastInput = prompt
	return f.respond(prompt)
}

// echoSegments answers every segment with a translated- prefix, keeping
// the positional protocol intact.
func echoSegments(prompt string) (string, error) {
	body := prompt[strings.LastIndex(prompt, "\n\n")+2:]
	segments := strings.Split(body, segmentMarker)
	out := make([]string, len(segments))
	for i, segment := range segments {
		out[i] = "translated-" + strings.TrimSpace(segment)
	}
	return strings.Join(out, "\n"+segmentMarker+"\n"), nil
}

func TestTranslateFieldBlankInputSkipsCall(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{respond: echoSegments}
	svc := NewService(gen, "Malay", nil)

	outcome := svc.TranslateField(context.Background(), "   \n ")
	if outcome.Failed {
		t.Fatalf("blank input must be a successful empty outcome")
	}
	if outcome.Text != "" {
		t.Fatalf("expected empty text, got %q", outcome.Text)
	}
	if gen.calls != 0 {
		t.Fatalf("blank input must not hit the backend, got %d calls", gen.calls)
	}
}

func TestTranslateFieldFailure(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{respond: func(string) (string, error) {
		return "", fmt.Errorf("rate_limited error (status 429): throttled")
	}}
	svc := NewService(gen, "Malay", nil)

	outcome := svc.TranslateField(context.Background(), "Bitcoin rises")
	if !outcome.Failed {
		t.Fatalf("exhausted backend must yield a Failed outcome")
	}
}

func TestTranslateBatchAlignment(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{respond: echoSegments}
	svc := NewService(gen, "Malay", nil)

	texts := []string{"one", "", "three"}
	outcomes := svc.TranslateBatch(context.Background(), texts)

	if len(outcomes) != len(texts) {
		t.Fatalf("expected %d outcomes, got %d", len(texts), len(outcomes))
	}
	if outcomes[0].Failed || outcomes[0].Text != "translated-one" {
		t.Fatalf("unexpected first outcome: %+v", outcomes[0])
	}
	if outcomes[1].Failed || outcomes[1].Text != "" {
		t.Fatalf("blank input must stay an empty success: %+v", outcomes[1])
	}
	if outcomes[2].Text != "translated-three" {
		t.Fatalf("unexpected third outcome: %+v", outcomes[2])
	}
	if strings.Contains(gen.lastInput, "\n\n\n") {
		t.Fatalf("blank segment leaked into the prompt")
	}
}

func TestTranslateBatchShortResponsePadded(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{respond: func(string) (string, error) {
		// One segment short of the three requested.
		return "first\n" + segmentMarker + "\nsecond", nil
	}}
	svc := NewService(gen, "Malay", nil)

	outcomes := svc.TranslateBatch(context.Background(), []string{"a", "b", "c"})

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Text != "first" || outcomes[1].Text != "second" {
		t.Fatalf("unexpected aligned outcomes: %+v", outcomes[:2])
	}
	if !outcomes[2].Failed {
		t.Fatalf("shortfall must be padded with Failed, got %+v", outcomes[2])
	}
}

func TestTranslateBatchBackendFailure(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{respond: func(string) (string, error) {
		return "", fmt.Errorf("backend down")
	}}
	svc := NewService(gen, "Malay", nil)

	outcomes := svc.TranslateBatch(context.Background(), []string{"a", "", "c"})

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if !outcomes[0].Failed || !outcomes[2].Failed {
		t.Fatalf("sent segments must fail: %+v", outcomes)
	}
	if outcomes[1].Failed {
		t.Fatalf("blank segment must remain an empty success: %+v", outcomes[1])
	}
}

func TestTranslateBatchAllBlank(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{respond: echoSegments}
	svc := NewService(gen, "Malay", nil)

	outcomes := svc.TranslateBatch(context.Background(), []string{"", "  "})

	if gen.calls != 0 {
		t.Fatalf("all-blank batch must not hit the backend")
	}
	for i, outcome := range outcomes {
		if outcome.Failed || outcome.Text != "" {
			t.Fatalf("outcome %d should be empty success: %+v", i, outcome)
		}
	}
}
