package book

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/hailam/renaissance/internal/random"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeZstd(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMergeConcatenates(t *testing.T) {
	a := Data{"AB": {{UCI: "e2e4", Weight: 10}}}
	b := Data{
		"AB": {{UCI: "e2e4", Weight: 5}, {UCI: "d2d4", Weight: 1}},
		"CD": {{UCI: "g1f3", Weight: 2}},
	}
	merged := Merge(a, b)

	if got := len(merged["AB"]); got != 3 {
		t.Errorf("AB has %d entries, want 3", got)
	}
	if merged["AB"][0].UCI != "e2e4" || merged["AB"][1].UCI != "e2e4" {
		t.Errorf("AB = %v, want concatenation in source order", merged["AB"])
	}
	if got := len(merged["CD"]); got != 1 {
		t.Errorf("CD has %d entries, want 1", got)
	}
}

func TestDecodeRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{"AB": [`},
		{"wrong shape", `["e2e4"]`},
		{"zero weight", `{"AB": [{"uci": "e2e4", "weight": 0}]}`},
		{"negative weight", `{"AB": [{"uci": "e2e4", "weight": -3}]}`},
		{"long move", `{"AB": [{"uci": "e7e8q", "weight": 1}]}`},
		{"overflowing total", `{"AB": [{"uci": "e2e4", "weight": 9000000000000000000}, {"uci": "d2d4", "weight": 9000000000000000000}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tc.json)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestInitializeMergesFileSources(t *testing.T) {
	dir := t.TempDir()
	plain := writeFile(t, dir, "main.json", `{"AB": [{"uci": "e2e4", "weight": 3}]}`)
	packed := writeZstd(t, dir, "extra.json.zst", `{"AB": [{"uci": "d2d4", "weight": 1}], "CD": [{"uci": "g1f3", "weight": 1}]}`)

	b := NewWeightedBook([]string{plain, packed}, WithRandom(random.New(1)))
	if err := b.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !b.Enabled() {
		t.Fatal("book not enabled")
	}
	if b.Size() != 2 {
		t.Errorf("Size() = %d, want 2", b.Size())
	}
	if got := len(b.entries["AB"]); got != 2 {
		t.Errorf("AB has %d entries, want 2", got)
	}

	uci, ok := b.Probe("CD")
	if !ok || uci != "g1f3" {
		t.Errorf("Probe(CD) = %q, %v", uci, ok)
	}
	if _, ok := b.Probe("EF"); ok {
		t.Error("Probe of unknown key found a move")
	}
}

func TestLoadFailureDisablesBook(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", `{"AB": [{"uci": "e2e4", "weight": 3}]}`)
	bad := writeFile(t, dir, "bad.json", `{"AB": [{"uci": "e2e4", "weight": "heavy"}]}`)
	heavy1 := writeFile(t, dir, "heavy1.json", `{"AB": [{"uci": "e2e4", "weight": 9000000000000000000}]}`)
	heavy2 := writeFile(t, dir, "heavy2.json", `{"AB": [{"uci": "d2d4", "weight": 9000000000000000000}]}`)

	tests := []struct {
		name    string
		sources []string
	}{
		{"malformed", []string{good, bad}},
		{"missing file", []string{good, filepath.Join(dir, "nope.json")}},
		{"merged weights overflow", []string{heavy1, heavy2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewWeightedBook(tc.sources)
			err := b.Initialize(context.Background())
			if errors.Cause(err) != ErrBookDisabled {
				t.Fatalf("Initialize error = %v, want ErrBookDisabled", err)
			}
			if b.Enabled() {
				t.Error("book enabled after failure")
			}
			if _, ok := b.Probe("AB"); ok {
				t.Error("disabled book returned a move")
			}
		})
	}
}

func TestHTTPSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/book.json":
			w.Write([]byte(`{"AB": [{"uci": "c2c4", "weight": 2}]}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	ok := NewWeightedBook([]string{srv.URL + "/book.json"}, WithHTTPClient(srv.Client()))
	if err := ok.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if uci, found := ok.Probe("AB"); !found || uci != "c2c4" {
		t.Errorf("Probe = %q, %v", uci, found)
	}

	broken := NewWeightedBook([]string{srv.URL + "/book.json", srv.URL + "/missing.json"}, WithHTTPClient(srv.Client()))
	if err := broken.Initialize(context.Background()); errors.Cause(err) != ErrBookDisabled {
		t.Errorf("Initialize error = %v, want ErrBookDisabled", err)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	path := writeFile(t, t.TempDir(), "book.json", `{"AB": [{"uci": "e2e4", "weight": 1}]}`)
	b := NewWeightedBook([]string{path})

	if _, ok := b.Probe("AB"); ok {
		t.Error("probe before load found a move")
	}

	b.Start(context.Background())
	select {
	case <-b.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("book did not finish loading")
	}
	if err := b.Initialize(context.Background()); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if b.Size() != 1 {
		t.Errorf("Size() = %d, want 1", b.Size())
	}
}

func TestWeightedDraw(t *testing.T) {
	path := writeFile(t, t.TempDir(), "book.json",
		`{"AB": [{"uci": "e2e4", "weight": 1}, {"uci": "d2d4", "weight": 3}]}`)
	b := NewWeightedBook([]string{path}, WithCache(NoCache()), WithRandom(random.New(8)))
	if err := b.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}

	counts := map[string]int{}
	const n = 4000
	for i := 0; i < n; i++ {
		uci, ok := b.Probe("AB")
		if !ok {
			t.Fatal("probe failed")
		}
		counts[uci]++
	}
	if len(counts) != 2 {
		t.Fatalf("counts = %v", counts)
	}
	// Expect about 3000 d2d4.
	if d := counts["d2d4"]; d < 2700 || d > 3300 {
		t.Errorf("d2d4 drawn %d/%d times, want about 3000", d, n)
	}
}

func TestProbeReusesCachedChoice(t *testing.T) {
	path := writeFile(t, t.TempDir(), "book.json",
		`{"AB": [{"uci": "e2e4", "weight": 1}, {"uci": "d2d4", "weight": 1}, {"uci": "c2c4", "weight": 1}]}`)

	now := time.Unix(1000, 0)
	cache := NewMemoryCacheWithClock(DefaultChoiceTTL, func() time.Time { return now })
	b := NewWeightedBook([]string{path}, WithCache(cache), WithRandom(random.New(2)))
	if err := b.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}

	first, _ := b.Probe("AB")
	for i := 0; i < 50; i++ {
		now = now.Add(time.Second)
		if got, _ := b.Probe("AB"); got != first {
			t.Fatalf("probe %d = %s, want cached %s", i, got, first)
		}
	}

	now = now.Add(DefaultChoiceTTL)
	if _, ok := cache.Get("AB"); ok {
		t.Error("cache entry survived its window")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	now := time.Unix(0, 0)
	c := NewMemoryCacheWithClock(time.Minute, func() time.Time { return now })

	c.Put("AB", "e2e4")
	if got, ok := c.Get("AB"); !ok || got != "e2e4" {
		t.Errorf("Get = %q, %v", got, ok)
	}

	now = now.Add(59 * time.Second)
	if _, ok := c.Get("AB"); !ok {
		t.Error("entry expired early")
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("AB"); ok {
		t.Error("entry still present after ttl")
	}
}
