package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopResolveHooks{}
	r.OnBuildStart(ctx, "app")
	r.OnBuildComplete(ctx, "app", 12, time.Second, nil)
	r.OnResolve(ctx, "registry", "lodash", time.Millisecond, nil)
	r.OnCircularSkip(ctx, "a")

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "npm")
	c.OnCacheMiss(ctx, "github")
	c.OnCacheSet(ctx, "npm", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "registry.npmjs.org", "/lodash")
	h.OnResponse(ctx, "GET", "registry.npmjs.org", "/lodash", 200, time.Second)
	h.OnError(ctx, "GET", "registry.npmjs.org", "/lodash", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Resolve() should return NoopResolveHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customResolve := &testResolveHooks{}
	SetResolveHooks(customResolve)
	if Resolve() != customResolve {
		t.Error("SetResolveHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Resolve().(NoopResolveHooks); !ok {
		t.Error("Reset() should restore NoopResolveHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testResolveHooks{}
	SetResolveHooks(custom)
	SetResolveHooks(nil)

	if Resolve() != custom {
		t.Error("SetResolveHooks(nil) should be ignored")
	}
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheus(prometheus.NewRegistry())

	p.OnBuildComplete(ctx, "app", 5, time.Second, nil)
	p.OnBuildComplete(ctx, "app", 0, time.Second, errors.New("boom"))
	p.OnResolve(ctx, "registry", "a", time.Millisecond, nil)
	p.OnResolve(ctx, "registry", "b", time.Millisecond, nil)
	p.OnResolve(ctx, "source", "c", time.Millisecond, errors.New("boom"))
	p.OnCircularSkip(ctx, "a")
	p.OnCacheHit(ctx, "npm")
	p.OnResponse(ctx, "GET", "registry.npmjs.org", "/a", 503, time.Millisecond)

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"builds ok", p.buildsTotal.WithLabelValues("ok"), 1},
		{"builds error", p.buildsTotal.WithLabelValues("error"), 1},
		{"registry ok", p.resolveTotal.WithLabelValues("registry", "ok"), 2},
		{"source error", p.resolveTotal.WithLabelValues("source", "error"), 1},
		{"circular skips", p.circularSkips, 1},
		{"cache hits", p.cacheEvents.WithLabelValues("hit", "npm"), 1},
		{"http 5xx", p.httpRequests.WithLabelValues("registry.npmjs.org", "5xx"), 1},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(c.c); got != c.want {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}
}

type testResolveHooks struct{ NoopResolveHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
