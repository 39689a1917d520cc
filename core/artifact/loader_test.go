package artifact

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jdalisay/anihan/core/feature"
	"github.com/jdalisay/anihan/infra/logger"
)

var fallback = feature.NewSchema(
	feature.Field{Name: "Fingerlings", Default: 5000},
	feature.Field{Name: "SurvivalRate", Default: 85},
	feature.Field{Name: "AvgWeight", Default: 250},
)

var defaults = map[string]float64{"Fingerlings": 5000, "SurvivalRate": 85, "AvgWeight": 250}

func writeArtifact(t *testing.T, encode func(Document) []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.bin")
	if err := os.WriteFile(path, encode(testDoc()), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func encodeGob(doc Document) []byte {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(doc); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func encodeJSON(doc Document) []byte {
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return data
}

func encodeJSONUTF16(doc Document) []byte {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, _, err := transform.Bytes(enc, encodeJSON(doc))
	if err != nil {
		panic(err)
	}
	return data
}

func encodeGzipJSON(doc Document) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(encodeJSON(doc)); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func TestLoader_StrategyFallback(t *testing.T) {
	// Each dialect is readable by exactly one strategy; earlier strategies
	// must fail in isolation and the loader must record the one that won.
	cases := []struct {
		strategy string
		encode   func(Document) []byte
	}{
		{"gob", encodeGob},
		{"json", encodeJSON},
		{"json-utf16", encodeJSONUTF16},
		{"gzip+json", encodeGzipJSON},
	}
	l := NewLoader(logger.NopLogger{})
	for _, tc := range cases {
		t.Run(tc.strategy, func(t *testing.T) {
			path := writeArtifact(t, tc.encode)
			h, err := l.Load("tilapia", "Tilapia Harvest Forecast Model", path, fallback, defaults)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if h.Strategy != tc.strategy {
				t.Fatalf("loaded via %s, want %s", h.Strategy, tc.strategy)
			}
			if h.Version != "2.1.0" {
				t.Fatalf("version %s", h.Version)
			}
		})
	}
}

func TestLoader_SchemaFromArtifact(t *testing.T) {
	l := NewLoader(logger.NopLogger{})
	path := writeArtifact(t, encodeJSON)
	h, err := l.Load("tilapia", "m", path, feature.Schema{}, defaults)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	names := h.Schema.Names()
	want := []string{"Fingerlings", "SurvivalRate", "AvgWeight"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("schema names %v, want %v", names, want)
		}
	}
	if h.Schema.Fields[0].Default != 5000 {
		t.Fatalf("defaults table not applied: %v", h.Schema.Fields)
	}
}

func TestLoader_SchemaFallbackWhenUnnamed(t *testing.T) {
	l := NewLoader(logger.NopLogger{})
	path := writeArtifact(t, func(doc Document) []byte {
		doc.FeatureNames = nil
		return encodeJSON(doc)
	})
	h, err := l.Load("bangus", "m", path, fallback, defaults)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if h.Schema.Len() != fallback.Len() || h.Schema.Fields[0].Name != "Fingerlings" {
		t.Fatalf("expected fallback schema, got %v", h.Schema.Fields)
	}
}

func TestLoader_AllStrategiesFail(t *testing.T) {
	l := NewLoader(logger.NopLogger{})
	path := filepath.Join(t.TempDir(), "model.bin")
	if err := os.WriteFile(path, []byte("not a model at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := l.Load("tilapia", "m", path, fallback, defaults)
	var lerr *LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if len(lerr.Attempts) != len(Strategies()) {
		t.Fatalf("expected %d recorded attempts, got %d", len(Strategies()), len(lerr.Attempts))
	}
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("load errors must unwrap to ErrModelUnavailable")
	}
}

func TestLoader_MissingFile(t *testing.T) {
	l := NewLoader(logger.NopLogger{})
	_, err := l.Load("tilapia", "m", filepath.Join(t.TempDir(), "absent.bin"), fallback, defaults)
	var lerr *LoadError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if len(lerr.Attempts) != 1 || lerr.Attempts[0].Strategy != "read" {
		t.Fatalf("expected a single read failure, got %+v", lerr.Attempts)
	}
}

func TestRegistry_IsolatesCorruptSpecies(t *testing.T) {
	reg := NewRegistry(NewLoader(logger.NopLogger{}), logger.NopLogger{})

	badPath := filepath.Join(t.TempDir(), "corrupt.bin")
	if err := os.WriteFile(badPath, []byte{0x00, 0x01, 0x02}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := reg.Load(ModelConfig{Species: "tilapia", Name: "t", Path: badPath, Fallback: fallback, Defaults: defaults}); err == nil {
		t.Fatalf("corrupt artifact should fail to load")
	}

	goodPath := writeArtifact(t, encodeGob)
	if err := reg.Load(ModelConfig{Species: "bangus", Name: "b", Path: goodPath, Fallback: fallback, Defaults: defaults}); err != nil {
		t.Fatalf("healthy species must be unaffected: %v", err)
	}

	if _, err := reg.Handle("tilapia"); !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected unavailable tilapia, got %v", err)
	}
	if _, err := reg.Handle("bangus"); err != nil {
		t.Fatalf("bangus handle: %v", err)
	}
	if reg.Available("tilapia") || !reg.Available("bangus") {
		t.Fatalf("availability flags wrong")
	}

	infos := reg.Infos()
	if len(infos) != 2 {
		t.Fatalf("expected 2 registry entries, got %d", len(infos))
	}
	if infos[0].Species != "bangus" || !infos[0].Loaded {
		t.Fatalf("bangus entry %+v", infos[0])
	}
	if infos[1].Species != "tilapia" || infos[1].Loaded {
		t.Fatalf("tilapia entry %+v", infos[1])
	}
}

func TestRegistry_LoadOnce(t *testing.T) {
	reg := NewRegistry(NewLoader(logger.NopLogger{}), logger.NopLogger{})
	path := writeArtifact(t, encodeJSON)
	cfg := ModelConfig{Species: "tilapia", Name: "t", Path: path, Fallback: fallback, Defaults: defaults}
	if err := reg.Load(cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	first, _ := reg.Handle("tilapia")
	// Second load of the same species is a no-op, even if the path is gone.
	cfg.Path = filepath.Join(t.TempDir(), "missing.bin")
	if err := reg.Load(cfg); err != nil {
		t.Fatalf("reload should be a no-op: %v", err)
	}
	second, _ := reg.Handle("tilapia")
	if first != second {
		t.Fatalf("handle must be cached")
	}
}

func TestLoader_UnknownSpecies(t *testing.T) {
	reg := NewRegistry(NewLoader(logger.NopLogger{}), logger.NopLogger{})
	if _, err := reg.Handle("galunggong"); !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
