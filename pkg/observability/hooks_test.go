package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type countingHooks struct {
	NoopCacheHooks
	hits, misses int
}

func (c *countingHooks) OnCacheHit(context.Context, string)  { c.hits++ }
func (c *countingHooks) OnCacheMiss(context.Context, string) { c.misses++ }

func TestRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() default is not a no-op")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() default is not a no-op")
	}

	c := &countingHooks{}
	SetCacheHooks(c)
	SetCacheHooks(nil)
	Cache().OnCacheHit(context.Background(), "analysis")
	Cache().OnCacheMiss(context.Background(), "layout")
	if c.hits != 1 || c.misses != 1 {
		t.Errorf("hits, misses = %d, %d, want 1, 1", c.hits, c.misses)
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() did not restore the no-op cache hooks")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnAnalyzeStart(ctx, 12)
	h.OnAnalyzeComplete(ctx, 10, 7, time.Millisecond)
	h.OnCacheSet(ctx, "layout", 512)
	h.OnRequest(ctx, "POST", "/v1/analyze", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"analyze started", "files=12", "edges=7", "cache set", "route=/v1/analyze"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
