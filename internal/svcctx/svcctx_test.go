package svcctx

import (
	"context"
	"log/slog"
	"testing"

	"github.com/outlinehq/specloc/internal/config"
	"github.com/outlinehq/specloc/internal/embedder"
	"github.com/outlinehq/specloc/internal/home"
	"github.com/outlinehq/specloc/internal/oracle"
)

func TestServicesFromReturnsNilWithoutAttachedServices(t *testing.T) {
	ctx := context.Background()
	if ServicesFrom(ctx) != nil {
		t.Error("expected ServicesFrom() = nil")
	}
	if LoggerFrom(ctx) != nil {
		t.Error("expected LoggerFrom() = nil")
	}
	if HomeFrom(ctx) != nil {
		t.Error("expected HomeFrom() = nil")
	}
	if ConfigFrom(ctx) != nil {
		t.Error("expected ConfigFrom() = nil")
	}
	if OracleFrom(ctx) != nil {
		t.Error("expected OracleFrom() = nil")
	}
	if EmbedderFrom(ctx) != nil {
		t.Error("expected EmbedderFrom() = nil")
	}
}

func TestWithServicesMakesEveryExtractorReturnTheAttachedValue(t *testing.T) {
	logger := slog.Default()
	homeDir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New() error = %v", err)
	}
	cfg := config.DefaultConfig()
	mockOracle := oracle.NewMockOracle(nil)
	hashEmbedder := embedder.NewHashEmbedder()

	services := &Services{
		Logger:   logger,
		Home:     homeDir,
		Config:   &cfg,
		Oracle:   mockOracle,
		Embedder: hashEmbedder,
	}

	ctx := WithServices(context.Background(), services)

	if ServicesFrom(ctx) != services {
		t.Error("ServicesFrom() did not return the attached *Services")
	}
	if LoggerFrom(ctx) != logger {
		t.Error("LoggerFrom() did not return the attached logger")
	}
	if HomeFrom(ctx) != homeDir {
		t.Error("HomeFrom() did not return the attached home dir")
	}
	if ConfigFrom(ctx) != &cfg {
		t.Error("ConfigFrom() did not return the attached *Config")
	}
	if OracleFrom(ctx) != mockOracle {
		t.Error("OracleFrom() did not return the attached oracle")
	}
	if EmbedderFrom(ctx) != hashEmbedder {
		t.Error("EmbedderFrom() did not return the attached embedder")
	}
}
