package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/outlinehq/specloc/internal/config"
	"github.com/outlinehq/specloc/internal/embedder"
	"github.com/outlinehq/specloc/internal/home"
	"github.com/outlinehq/specloc/internal/locator"
	"github.com/outlinehq/specloc/internal/oracle"
	"github.com/outlinehq/specloc/internal/pdfsource"
	"github.com/outlinehq/specloc/internal/svcctx"
	"github.com/outlinehq/specloc/version"
)

var (
	locateTracePath string
	locateNoCache   bool
	locateNoOracle  bool
)

var locateCmd = &cobra.Command{
	Use:   "locate [pdf]",
	Short: "Anchor a proposed outline to its exact position in a PDF",
	Long: `locate reads a PDF, asks the configured oracle for a candidate
outline, anchors every candidate header to a specific line, and derives the
section spans it bounds.

Examples:
  specloc locate spec.pdf
  specloc locate spec.pdf --output ndjson-trace --trace-out trace.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

func init() {
	locateCmd.Flags().StringVar(&locateTracePath, "trace-out", "", "write the decision trace as NDJSON to this path")
	locateCmd.Flags().BoolVar(&locateNoCache, "no-cache", false, "skip the result cache lookup and store")
	locateCmd.Flags().BoolVar(&locateNoOracle, "no-oracle", false, "skip the oracle call and run the locator against an empty candidate set")
}

func runLocate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger()

	h, err := home.New(homeDir)
	if err != nil {
		return err
	}
	if err := h.EnsureExists(); err != nil {
		return err
	}

	configFile := cfgFile
	if configFile == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			configFile = "config.yaml"
		} else {
			configFile = h.ConfigPath()
		}
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		logger.Info("creating default config", "path", configFile)
		if err := config.WriteDefault(configFile); err != nil {
			logger.Warn("failed to write default config", "error", err)
		}
	}
	cfgMgr, err := config.NewManager(configFile)
	if err != nil {
		logger.Warn("config not loaded, using defaults", "error", err)
		cfgMgr = nil
	}
	var cfg *config.Config
	if cfgMgr != nil {
		cfg = cfgMgr.Get()
	} else {
		defaults := config.DefaultConfig()
		cfg = &defaults
	}

	svc, err := buildServices(logger, h, cfg)
	if err != nil {
		return err
	}
	ctx = svcctx.WithServices(ctx, svc)

	pdfPath := args[0]
	logger.Info("extracting PDF text", "path", pdfPath)
	lines, err := pdfsource.Extract(pdfPath)
	if err != nil {
		return fmt.Errorf("extract %s: %w", pdfPath, err)
	}
	logger.Info("extracted lines", "count", len(lines))

	locatorCfg := cfg.Locator
	locatorCfg.TraceEnabled = locatorCfg.TraceEnabled || locateTracePath != "" || outputFormat == "ndjson-trace"

	docHash := locator.DocHash(lines)

	var resultCache *locator.ResultCache
	if !locateNoCache {
		resultCache, err = locator.NewResultCache(h.ResultCachePath())
		if err != nil {
			logger.Warn("result cache unavailable", "error", err)
			resultCache = nil
		}
	}

	cacheKey := ""
	if resultCache != nil {
		cacheKey, err = locator.CacheKey(locator.CacheKeyInputs{
			DocHash:         docHash,
			ParserVersion:   "pdfsource-v1",
			Mode:            string(locator.ModeLLMFull),
			SuppressTOC:     locatorCfg.SuppressTOC,
			SuppressRunning: locatorCfg.SuppressRunning,
			LocatorRev:      "1",
		})
		if err != nil {
			return fmt.Errorf("compute cache key: %w", err)
		}
		if cached, ok, err := resultCache.Get(cacheKey); err == nil && ok {
			logger.Info("result cache hit", "key", cacheKey)
			cached.Mode = locator.ModeCache
			return emitResult(cmd, cached)
		}
	}

	candidates, err := proposeOutline(ctx, svc, lines)
	if err != nil {
		return err
	}

	cosine := buildCosineFunc(ctx, svc, cfg, candidates)

	var result locator.LocateResult
	if cosine != nil {
		result, err = locator.Locate(lines, candidates, locatorCfg, cosine)
	} else {
		result, err = locator.Locate(lines, candidates, locatorCfg)
	}
	if err != nil {
		return fmt.Errorf("locate: %w", err)
	}

	if resultCache != nil && cacheKey != "" {
		if err := resultCache.Put(cacheKey, result); err != nil {
			logger.Warn("failed to write result cache entry", "error", err)
		}
	}

	if locateTracePath != "" {
		tracer := locator.NewTracer(true)
		for _, ev := range result.Trace {
			tracer.Event(ev.Type, ev.Data)
		}
		if err := tracer.FlushJSONL(locateTracePath); err != nil {
			logger.Warn("failed to flush trace", "error", err)
		}
	}

	return emitResult(cmd, result)
}

// proposeOutline asks the oracle for a candidate outline, unless --no-oracle
// was passed or no oracle is configured, in which case the locator runs
// against an empty candidate set, so no header is anchored (gap filling
// only recovers numbers between headers that were anchored).
func proposeOutline(ctx context.Context, svc *svcctx.Services, lines []locator.Line) ([]locator.CandidateHeader, error) {
	if locateNoOracle || svc.Oracle == nil {
		return nil, nil
	}
	text := joinLineText(lines)
	candidates, err := svc.Oracle.ProposeOutline(ctx, text)
	if err != nil {
		var transportErr *oracle.TransportError
		if errors.As(err, &transportErr) {
			svc.Logger.Warn("oracle unavailable, continuing without a candidate outline", "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("propose outline: %w", err)
	}
	return candidates, nil
}

func joinLineText(lines []locator.Line) string {
	out := make([]byte, 0, len(lines)*40)
	for _, l := range lines {
		out = append(out, l.Text...)
		out = append(out, '\n')
	}
	return string(out)
}

// buildCosineFunc wires the locator core's optional vector-fusion closure
// (§4.5) against the configured embedder. Every candidate header's query
// text is embedded up front; a window's text is embedded the first time the
// closure sees it and memoized. The closure returns the best cosine
// similarity between the window and any candidate header.
func buildCosineFunc(ctx context.Context, svc *svcctx.Services, cfg *config.Config, candidates []locator.CandidateHeader) func(w locator.Window) (float64, bool) {
	if !cfg.Embedder.Enabled || !cfg.Locator.UseEmbeddings || svc.Embedder == nil || len(candidates) == 0 {
		return nil
	}

	cacheDir := svc.Home.EmbeddingCachePath()
	if cfg.Embedder.CacheDir != "" {
		cacheDir = filepath.Join(svc.Home.DataPath(), cfg.Embedder.CacheDir)
	}
	vecCache, err := embedder.NewVectorCache(cacheDir)
	if err != nil {
		svc.Logger.Warn("vector cache unavailable", "error", err)
		vecCache = nil
	}

	embedText := func(text string, query bool) ([]float32, error) {
		key := embedder.KeyFor(text)
		if vecCache != nil {
			if v, ok, _ := vecCache.Get(key); ok {
				return v, nil
			}
		}
		var vec []float32
		var embedErr error
		if query {
			vec, embedErr = svc.Embedder.EmbedQuery(ctx, text)
		} else {
			vecs, e := svc.Embedder.Embed(ctx, []string{text})
			embedErr = e
			if e == nil && len(vecs) > 0 {
				vec = vecs[0]
			}
		}
		if embedErr != nil {
			return nil, embedErr
		}
		if vecCache != nil {
			_ = vecCache.Put(key, vec)
		}
		return vec, nil
	}

	headerVecs := make([][]float32, len(candidates))
	for i, h := range candidates {
		query := h.Text
		if h.Number != "" {
			query = h.Number + " " + h.Text
		}
		vec, err := embedText(query, true)
		if err != nil {
			svc.Logger.Warn("failed to embed candidate header, disabling vector fusion", "error", err)
			return nil
		}
		headerVecs[i] = vec
	}

	windowVecCache := map[string][]float32{}

	return func(w locator.Window) (float64, bool) {
		if len(headerVecs) == 0 {
			return 0, false
		}
		wVec, ok := windowVecCache[w.Text]
		if !ok {
			vec, err := embedText(w.Text, false)
			if err != nil {
				return 0, false
			}
			wVec = vec
			windowVecCache[w.Text] = wVec
		}
		best := 0.0
		found := false
		for _, hv := range headerVecs {
			sim, err := embedder.CosineSimilarity(wVec, hv)
			if err != nil {
				continue
			}
			if !found || sim > best {
				best, found = sim, true
			}
		}
		return best, found
	}
}

func buildServices(logger *slog.Logger, h *home.Dir, cfg *config.Config) (*svcctx.Services, error) {
	svc := &svcctx.Services{
		Logger: logger,
		Home:   h,
		Config: cfg,
	}

	if cfg.Oracle.APIKey != "" {
		svc.Oracle = oracle.NewOpenAIOracle(oracle.OpenAIConfig{
			APIKey:     cfg.Oracle.APIKey,
			Model:      cfg.Oracle.Model,
			BaseURL:    cfg.Oracle.BaseURL,
			MaxRetries: cfg.Oracle.MaxRetries,
			Timeout:    cfg.Oracle.Timeout,
		})
	} else {
		logger.Warn("no oracle API key configured, outline proposals are disabled")
	}

	if cfg.Embedder.Enabled {
		svc.Embedder = embedder.NewHashEmbedder()
	}

	return svc, nil
}

func emitResult(cmd *cobra.Command, result locator.LocateResult) error {
	switch outputFormat {
	case "ndjson-trace":
		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, ev := range result.Trace {
			if err := enc.Encode(ev); err != nil {
				return fmt.Errorf("encode trace event: %w", err)
			}
		}
		return nil
	default:
		out, err := stampToolVersion(result)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	}
}

// stampToolVersion marshals result and injects the running binary's
// version into the output without round-tripping through LocateResult's
// Go type, which has no field for it.
func stampToolVersion(result locator.LocateResult) (string, error) {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	stamped, err := sjson.SetBytes(b, "tool_version", version.GitRelease)
	if err != nil {
		return "", fmt.Errorf("stamp tool_version: %w", err)
	}
	return string(stamped), nil
}

