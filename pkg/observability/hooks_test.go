package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type storeOnly struct{ ops int }

func (s *storeOnly) OnStoreOp(context.Context, string, string, time.Duration, error) { s.ops++ }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	for name, h := range map[string]any{"view": View(), "layout": Layout(), "store": Store(), "http": HTTP()} {
		if _, ok := h.(Noop); !ok {
			t.Errorf("%s hooks = %T, want Noop", name, h)
		}
	}
}

func TestSetters(t *testing.T) {
	defer Reset()
	Reset()

	st := &storeOnly{}
	SetStoreHooks(st)
	SetStoreHooks(nil)
	if Store() != st {
		t.Error("SetStoreHooks(nil) should keep the registered hooks")
	}
	if _, ok := View().(Noop); !ok {
		t.Error("setting store hooks changed the view hooks")
	}

	Store().OnStoreOp(context.Background(), "memory", "get_session", 0, nil)
	if st.ops != 1 {
		t.Errorf("ops = %d, want 1", st.ops)
	}

	Reset()
	if _, ok := Store().(Noop); !ok {
		t.Error("Reset should restore Noop")
	}
}

func TestRegisterPartial(t *testing.T) {
	defer Reset()
	Reset()

	st := &storeOnly{}
	Register(st)
	if Store() != st {
		t.Error("Register should install store hooks")
	}
	if _, ok := Layout().(Noop); !ok {
		t.Error("Register installed hooks the value does not implement")
	}
}

func TestLogHooks(t *testing.T) {
	defer Reset()
	var buf bytes.Buffer
	Register(LogHooks{Logger: log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})})

	ctx := context.Background()
	View().OnFilter(2, 100, 250, time.Millisecond)
	Layout().OnLayoutEnd(ctx, "moderate", 300, time.Second, context.Canceled)
	Store().OnStoreOp(ctx, "redis", "put_session", time.Millisecond, errors.New("timeout"))
	HTTP().OnResponse(ctx, "GET", "example.com", "/net.json", 503, time.Second)

	got := buf.String()
	for _, want := range []string{
		"filtered", "nodes=100",
		"layout stopped", "profile=moderate",
		"store op failed", "op=put_session",
		"http response", "status=503",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("log output missing %q:\n%s", want, got)
		}
	}
}
