package locator

import "testing"

func TestCacheKeyDeterministic(t *testing.T) {
	in := CacheKeyInputs{DocHash: "abc", ParserVersion: "1", Mode: "llm_full", LocatorRev: "rev1"}
	k1, err := CacheKey(in)
	if err != nil {
		t.Fatalf("CacheKey() error = %v", err)
	}
	k2, err := CacheKey(in)
	if err != nil {
		t.Fatalf("CacheKey() error = %v", err)
	}
	if k1 != k2 {
		t.Errorf("CacheKey() not deterministic: %q != %q", k1, k2)
	}
}

func TestCacheKeyDiffersOnInputChange(t *testing.T) {
	in1 := CacheKeyInputs{DocHash: "abc", LocatorRev: "rev1"}
	in2 := CacheKeyInputs{DocHash: "def", LocatorRev: "rev1"}
	k1, _ := CacheKey(in1)
	k2, _ := CacheKey(in2)
	if k1 == k2 {
		t.Error("expected different DocHash to produce different cache keys")
	}
}

func TestResultCachePutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewResultCache(dir)
	if err != nil {
		t.Fatalf("NewResultCache() error = %v", err)
	}

	key := "deadbeef"
	want := LocateResult{Mode: ModeLLMFull, DocHash: "abc"}
	if err := cache.Put(key, want); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if !cache.Has(key) {
		t.Error("Has() = false after Put()")
	}

	got, ok, err := cache.Get(key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want true")
	}
	if got.Mode != want.Mode {
		t.Errorf("Mode = %v, want %v", got.Mode, want.Mode)
	}
	if got.DocHash != want.DocHash {
		t.Errorf("DocHash = %v, want %v", got.DocHash, want.DocHash)
	}
}

func TestResultCacheGetMissingKey(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewResultCache(dir)
	if err != nil {
		t.Fatalf("NewResultCache() error = %v", err)
	}

	_, ok, err := cache.Get("missing")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true for missing key")
	}
	if cache.Has("missing") {
		t.Error("Has() = true for missing key")
	}
}
