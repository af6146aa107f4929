package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"docqa/internal/chunker"
	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/embedding"
	"docqa/internal/embedding/gemini"
	"docqa/internal/embedding/hashing"
	"docqa/internal/embedding/openai"
	"docqa/internal/guidelines"
	"docqa/internal/llm"
	"docqa/internal/loader"
	"docqa/internal/service"
	"docqa/internal/summarizer"
	"docqa/internal/vectorstore/badger"
	"docqa/internal/vectorstore/memory"
	"docqa/internal/vectorstore/qdrant"
	"docqa/internal/vectorstore/sqlite"
)

// needs lists the collaborators a command uses beyond store and embedder.
type needs struct {
	generator  bool
	guidelines bool
}

// app holds the wired components for one command invocation.
type app struct {
	pipeline *service.Pipeline
	store    domain.DocumentStore
	loader   *loader.Loader
}

func newApp(ctx context.Context, n needs) (*app, error) {
	ch, err := chunker.NewBoundaryChunker(cfg.Chunker.Size, cfg.Chunker.Overlap)
	if err != nil {
		return nil, err
	}
	emb, err := buildEmbedder(ctx, cfg.Embedder)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}
	store, err := buildStore(cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}

	var gen domain.Generator = unavailableGenerator{}
	if n.generator {
		if gen, err = buildGenerator(ctx, cfg.Generator); err != nil {
			store.Close()
			return nil, fmt.Errorf("generator: %w", err)
		}
	}

	var guide service.GuidelineSource = noGuidelines{}
	if n.guidelines {
		if guide, err = buildGuidelines(ctx, cfg.Retrieval, emb); err != nil {
			store.Close()
			return nil, fmt.Errorf("guidelines: %w", err)
		}
	}

	var sum domain.Summarizer
	if cfg.Summarizer.Type == "frequency" {
		sum = summarizer.NewFrequencySummarizer()
	}

	p := service.NewPipeline(service.Deps{
		Chunker:    ch,
		Embedder:   emb,
		Generator:  gen,
		Store:      store,
		Guidelines: guide,
		Summarizer: sum,
		Logger:     logger,
	}, service.Options{
		TopK:             cfg.Retrieval.TopK,
		GuidelineTopK:    cfg.Retrieval.GuidelineTopK,
		IngestMinChars:   cfg.Limits.IngestMinChars,
		AnalyzeMinChars:  cfg.Limits.AnalyzeMinChars,
		AnalyzeMaxChars:  cfg.Limits.AnalyzeMaxChars,
		PreviewSentences: cfg.Summarizer.MaxSentences,
	})
	return &app{pipeline: p, store: store, loader: loader.New(logger)}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func buildEmbedder(ctx context.Context, c config.EmbedderConfig) (domain.Embedder, error) {
	var emb domain.Embedder
	switch c.Type {
	case "hashing":
		h, err := hashing.NewEmbedder(c.Hashing.Dimension, hashing.WithBigrams(c.Hashing.Bigrams))
		if err != nil {
			return nil, err
		}
		emb = h
	case "openai":
		client, err := openai.NewClient(openai.Config{
			BaseURL:           c.OpenAI.BaseURL,
			APIKeyEnv:         c.OpenAI.APIKeyEnv,
			Model:             c.OpenAI.Model,
			Timeout:           time.Duration(c.OpenAI.TimeoutSecs) * time.Second,
			RequestsPerSecond: c.OpenAI.RequestsPerSecond,
			MaxRetries:        c.OpenAI.MaxRetries,
		})
		if err != nil {
			return nil, err
		}
		emb = client
	case "gemini":
		g, err := gemini.New(ctx, gemini.Config{
			APIKey:            os.Getenv(c.Gemini.APIKeyEnv),
			Model:             c.Gemini.Model,
			Dimension:         c.Gemini.Dimension,
			RequestsPerSecond: c.Gemini.RequestsPerSecond,
			BaseURL:           c.Gemini.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		emb = g
	default:
		return nil, fmt.Errorf("unknown embedder: %s", c.Type)
	}
	if c.Serialize {
		emb = embedding.NewSerialized(emb)
	}
	return emb, nil
}

func buildGenerator(ctx context.Context, c config.GeneratorConfig) (domain.Generator, error) {
	opts := llm.Options{
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		Timeout:     time.Duration(c.TimeoutSecs) * time.Second,
	}
	var (
		gen domain.Generator
		err error
	)
	switch c.Type {
	case "gemini":
		gen, err = llm.NewGemini(ctx, c.APIKey(), c.BaseURL, opts)
	case "claude":
		gen, err = llm.NewClaude(c.APIKey(), c.BaseURL, opts)
	case "openai":
		gen = llm.NewOpenAI(c.APIKey(), c.BaseURL, opts)
	default:
		return nil, fmt.Errorf("unknown generator: %s", c.Type)
	}
	if err != nil {
		return nil, err
	}
	if c.Serialize {
		gen = llm.NewSerialized(gen)
	}
	return gen, nil
}

func buildStore(c config.VectorStoreConfig) (domain.DocumentStore, error) {
	switch c.Type {
	case "memory":
		return memory.NewStorage(), nil
	case "badger":
		return badger.Open(c.Path, logger)
	case "sqlite":
		return sqlite.Open(c.Path, logger)
	case "qdrant":
		return qdrant.NewStorage(qdrant.Config{
			URL:        c.Qdrant.URL,
			APIKey:     c.Qdrant.APIKey,
			Collection: c.Qdrant.Collection,
			Timeout:    time.Duration(c.Qdrant.TimeoutSecs) * time.Second,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", c.Type)
	}
}

func buildGuidelines(ctx context.Context, c config.RetrievalConfig, emb domain.Embedder) (*guidelines.Index, error) {
	var (
		corpus []guidelines.Guideline
		err    error
	)
	if c.GuidelinesFile != "" {
		corpus, err = guidelines.LoadFile(c.GuidelinesFile)
	} else {
		corpus, err = guidelines.Default()
	}
	if err != nil {
		return nil, err
	}
	return guidelines.NewIndex(ctx, emb, corpus, logger)
}

var errNoGenerator = errors.New("no generator configured for this command")

type unavailableGenerator struct{}

func (unavailableGenerator) Name() string { return "none" }

func (unavailableGenerator) Generate(context.Context, string) (string, error) {
	return "", errNoGenerator
}

type noGuidelines struct{}

func (noGuidelines) Top(context.Context, string, int) ([]guidelines.Guideline, error) {
	return nil, nil
}
