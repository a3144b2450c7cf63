package font

import (
	stderrors "errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	wefterrors "github.com/go-weft/weft/pkg/errors"
	"github.com/go-weft/weft/pkg/graphics"
)

func testBitmap() *graphics.Bitmap {
	return &graphics.Bitmap{Image: image.NewNRGBA(image.Rect(0, 0, 1, 1))}
}

func testKey(backendID uint64, ch rune) CacheKey {
	return CacheKey{BackendID: backendID, Char: ch, Size: 16}
}

func TestGlyphCache_GetOrCreate(t *testing.T) {
	c := NewGlyphCache()
	key := testKey(1, 'A')

	produced := 0
	want := testBitmap()
	produce := func() (*graphics.Bitmap, error) {
		produced++
		return want, nil
	}

	got, err := c.GetOrCreate(key, produce)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if got != want {
		t.Error("expected the produced bitmap")
	}

	// Second lookup must be a pure cache hit.
	got, err = c.GetOrCreate(key, produce)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if got != want || produced != 1 {
		t.Errorf("expected one production, got %d", produced)
	}

	hits, misses, _, productions, _ := c.Stats()
	if hits != 1 || misses != 1 || productions != 1 {
		t.Errorf("stats hits=%d misses=%d productions=%d", hits, misses, productions)
	}
}

// TestGlyphCache_SingleFlight verifies that concurrent requests for one key
// run the producer exactly once and all observe its result.
func TestGlyphCache_SingleFlight(t *testing.T) {
	c := NewGlyphCache()
	key := testKey(1, 'A')

	var produced atomic.Int64
	want := testBitmap()
	produce := func() (*graphics.Bitmap, error) {
		produced.Add(1)
		time.Sleep(20 * time.Millisecond)
		return want, nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make([]*graphics.Bitmap, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = c.GetOrCreate(key, produce)
		}(i)
	}
	close(start)
	wg.Wait()

	if got := produced.Load(); got != 1 {
		t.Errorf("expected exactly one production, got %d", got)
	}
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d failed: %v", i, errs[i])
		}
		if results[i] != want {
			t.Fatalf("worker %d observed a different bitmap", i)
		}
	}
}

// TestGlyphCache_NegativeEntries verifies that a failed production is
// remembered and not retried until its TTL elapses.
func TestGlyphCache_NegativeEntries(t *testing.T) {
	c := NewGlyphCacheWithConfig(CacheConfig{MaxEntries: 16, NegativeTTL: 2 * time.Second})
	clock := time.Unix(1000, 0)
	c.now = func() time.Time { return clock }

	key := testKey(1, 'A')
	boom := stderrors.New("corrupt glyph")
	produced := 0
	produce := func() (*graphics.Bitmap, error) {
		produced++
		return nil, boom
	}

	_, err := c.GetOrCreate(key, produce)
	var prodErr *wefterrors.ProductionError
	if !stderrors.As(err, &prodErr) {
		t.Fatalf("expected ProductionError, got %v", err)
	}
	if !stderrors.Is(err, boom) {
		t.Error("ProductionError should wrap the producer's error")
	}

	// Within the TTL the remembered failure is returned without producing.
	clock = clock.Add(time.Second)
	if _, err := c.GetOrCreate(key, produce); !stderrors.As(err, &prodErr) {
		t.Fatalf("expected remembered ProductionError, got %v", err)
	}
	if produced != 1 {
		t.Errorf("producer re-ran inside the TTL: %d runs", produced)
	}

	// Past the TTL the producer runs again.
	clock = clock.Add(2 * time.Second)
	if _, err := c.GetOrCreate(key, produce); err == nil {
		t.Fatal("expected an error")
	}
	if produced != 2 {
		t.Errorf("expected a retry after TTL, got %d runs", produced)
	}

	_, _, _, _, failures := c.Stats()
	if failures != 2 {
		t.Errorf("expected 2 recorded failures, got %d", failures)
	}
}

// TestGlyphCache_Eviction verifies the LRU bound.
func TestGlyphCache_Eviction(t *testing.T) {
	c := NewGlyphCacheWithConfig(CacheConfig{MaxEntries: 2, NegativeTTL: time.Second})

	for _, ch := range "ABC" {
		key := testKey(1, ch)
		if _, err := c.GetOrCreate(key, func() (*graphics.Bitmap, error) {
			return testBitmap(), nil
		}); err != nil {
			t.Fatalf("GetOrCreate(%q) failed: %v", ch, err)
		}
	}

	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
	if c.Get(testKey(1, 'A')) != nil {
		t.Error("oldest entry should have been evicted")
	}
	if c.Get(testKey(1, 'C')) == nil {
		t.Error("newest entry should still be cached")
	}

	_, _, evictions, _, _ := c.Stats()
	if evictions != 1 {
		t.Errorf("expected 1 eviction, got %d", evictions)
	}
}

func TestGlyphCache_InvalidateBackend(t *testing.T) {
	c := NewGlyphCache()

	for _, backendID := range []uint64{1, 2} {
		if _, err := c.GetOrCreate(testKey(backendID, 'A'), func() (*graphics.Bitmap, error) {
			return testBitmap(), nil
		}); err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
	}

	c.InvalidateBackend(1)

	if c.Get(testKey(1, 'A')) != nil {
		t.Error("backend 1 entries should be gone")
	}
	if c.Get(testKey(2, 'A')) == nil {
		t.Error("backend 2 entries should survive")
	}
}

// TestGlyphCache_InvalidateBackend_Negative verifies that invalidation also
// clears remembered failures so a reloaded backend is retried immediately.
func TestGlyphCache_InvalidateBackend_Negative(t *testing.T) {
	c := NewGlyphCache()
	key := testKey(1, 'A')

	fail := func() (*graphics.Bitmap, error) { return nil, stderrors.New("boom") }
	if _, err := c.GetOrCreate(key, fail); err == nil {
		t.Fatal("expected a failure")
	}

	c.InvalidateBackend(1)

	produced := false
	if _, err := c.GetOrCreate(key, func() (*graphics.Bitmap, error) {
		produced = true
		return testBitmap(), nil
	}); err != nil {
		t.Fatalf("GetOrCreate after invalidation failed: %v", err)
	}
	if !produced {
		t.Error("producer should run again after invalidation")
	}
}

func TestGlyphCache_KeySeparation(t *testing.T) {
	c := NewGlyphCache()
	base := testKey(1, 'A')
	styled := base
	styled.Style = StyleBold
	effected := base
	effected.Effects = "outline(ff000000,0,0,2)"

	for _, key := range []CacheKey{base, styled, effected} {
		key := key
		if _, err := c.GetOrCreate(key, func() (*graphics.Bitmap, error) {
			return testBitmap(), nil
		}); err != nil {
			t.Fatalf("GetOrCreate failed: %v", err)
		}
	}

	if c.Len() != 3 {
		t.Errorf("style and effect variants should occupy distinct entries, got %d", c.Len())
	}
}
