package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LogConfig controls the arbor logger.
type LogConfig struct {
	Level string `yaml:"level" toml:"level" validate:"oneof=trace debug info warn error"`
	// File enables a file writer in addition to the console.
	File string `yaml:"file,omitempty" toml:"file,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks. Sizes are
// in characters.
type ChunkerConfig struct {
	Size    int `yaml:"size" toml:"size" validate:"gt=0"`
	Overlap int `yaml:"overlap" toml:"overlap" validate:"gte=0,ltfield=Size"`
}

// HashingEmbedderConfig configures the local feature hashing embedder.
type HashingEmbedderConfig struct {
	Dimension int  `yaml:"dimension" toml:"dimension" validate:"gt=0"`
	Bigrams   bool `yaml:"bigrams" toml:"bigrams"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL           string  `yaml:"base_url" toml:"base_url" validate:"url"`
	APIKeyEnv         string  `yaml:"api_key_env" toml:"api_key_env"`
	Model             string  `yaml:"model" toml:"model" validate:"required"`
	TimeoutSecs       int     `yaml:"timeout_secs" toml:"timeout_secs" validate:"gte=0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second" validate:"gte=0"`
	MaxRetries        int     `yaml:"max_retries" toml:"max_retries" validate:"gte=0"`
}

// GeminiEmbedderConfig holds configuration for the Gemini embedder.
type GeminiEmbedderConfig struct {
	APIKeyEnv         string  `yaml:"api_key_env" toml:"api_key_env"`
	Model             string  `yaml:"model" toml:"model" validate:"required"`
	Dimension         int     `yaml:"dimension" toml:"dimension" validate:"gte=0"`
	RequestsPerSecond float64 `yaml:"requests_per_second" toml:"requests_per_second" validate:"gte=0"`
	BaseURL           string  `yaml:"base_url,omitempty" toml:"base_url,omitempty" validate:"omitempty,url"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type string `yaml:"type" toml:"type" validate:"oneof=hashing openai gemini"`
	// Serialize allows a single embedding call at a time.
	Serialize bool                  `yaml:"serialize" toml:"serialize"`
	Hashing   HashingEmbedderConfig `yaml:"hashing" toml:"hashing"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty" toml:"openai,omitempty"`
	Gemini    *GeminiEmbedderConfig `yaml:"gemini,omitempty" toml:"gemini,omitempty"`
}

// GeneratorConfig selects and configures the text generator.
type GeneratorConfig struct {
	Type        string  `yaml:"type" toml:"type" validate:"oneof=gemini claude openai"`
	Serialize   bool    `yaml:"serialize" toml:"serialize"`
	// Model defaults per provider when empty.
	Model       string  `yaml:"model" toml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env" toml:"api_key_env"`
	BaseURL     string  `yaml:"base_url,omitempty" toml:"base_url,omitempty" validate:"omitempty,url"`
	Temperature float32 `yaml:"temperature" toml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens" toml:"max_tokens" validate:"gte=0"`
	TimeoutSecs int     `yaml:"timeout_secs" toml:"timeout_secs" validate:"gte=0"`
}

// APIKey resolves the key from the configured environment variable.
func (g GeneratorConfig) APIKey() string {
	return os.Getenv(g.APIKeyEnv)
}

// VectorStoreConfig selects and configures the document store.
type VectorStoreConfig struct {
	Type string `yaml:"type" toml:"type" validate:"oneof=memory badger sqlite qdrant"`
	// Path is the badger directory or the sqlite database file.
	Path   string        `yaml:"path,omitempty" toml:"path,omitempty" validate:"required_if=Type badger,required_if=Type sqlite"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty" toml:"qdrant,omitempty" validate:"required_if=Type qdrant"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url" toml:"url" validate:"url"`
	APIKey      string `yaml:"api_key" toml:"api_key"`
	Collection  string `yaml:"collection" toml:"collection" validate:"required"`
	TimeoutSecs int    `yaml:"timeout_secs" toml:"timeout_secs" validate:"gte=0"`
}

// SummarizerConfig selects and configures the preview summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type" toml:"type" validate:"oneof=frequency none"`
	MaxSentences int    `yaml:"max_sentences" toml:"max_sentences" validate:"gt=0"`
}

// RetrievalConfig tunes question answering and guideline lookup.
type RetrievalConfig struct {
	TopK          int `yaml:"top_k" toml:"top_k" validate:"gt=0"`
	GuidelineTopK int `yaml:"guideline_top_k" toml:"guideline_top_k" validate:"gt=0"`
	// GuidelinesFile replaces the built-in guideline corpus.
	GuidelinesFile string `yaml:"guidelines_file,omitempty" toml:"guidelines_file,omitempty"`
}

// LimitsConfig bounds accepted inputs, in characters.
type LimitsConfig struct {
	IngestMinChars  int `yaml:"ingest_min_chars" toml:"ingest_min_chars" validate:"gt=0"`
	AnalyzeMinChars int `yaml:"analyze_min_chars" toml:"analyze_min_chars" validate:"gt=0"`
	AnalyzeMaxChars int `yaml:"analyze_max_chars" toml:"analyze_max_chars" validate:"gtfield=AnalyzeMinChars"`
}

// WatchConfig configures directory auto-ingest.
type WatchConfig struct {
	Extensions []string `yaml:"extensions" toml:"extensions" validate:"min=1"`
	DebounceMS int      `yaml:"debounce_ms" toml:"debounce_ms" validate:"gte=0"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Log         LogConfig         `yaml:"log" toml:"log"`
	Chunker     ChunkerConfig     `yaml:"chunker" toml:"chunker"`
	Embedder    EmbedderConfig    `yaml:"embedder" toml:"embedder"`
	Generator   GeneratorConfig   `yaml:"generator" toml:"generator"`
	VectorStore VectorStoreConfig `yaml:"vector_store" toml:"vector_store"`
	Summarizer  SummarizerConfig  `yaml:"summarizer" toml:"summarizer"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" toml:"retrieval"`
	Limits      LimitsConfig      `yaml:"limits" toml:"limits"`
	Watch       WatchConfig       `yaml:"watch" toml:"watch"`
}

// Load reads a config from a specified path. Files ending in .toml are read
// as TOML, anything else as YAML. If the file does not exist, returns
// defaults. Environment overrides are applied last.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyConfigDefaults(cfg)
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./docqa.yaml and ./docqa.toml first, then
// ~/.config/docqa/config.yaml. If none exists, it writes defaults to
// ~/.config/docqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	for _, p := range []string{"docqa.yaml", "docqa.toml"} {
		if _, err := os.Stat(p); err == nil {
			cfg, err := Load(p)
			return cfg, p, err
		}
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	if err := Save(userPath, defaultConfig()); err != nil {
		return nil, "", err
	}
	cfg, err := Load(userPath)
	return cfg, userPath, err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks field constraints declared on the config structs.
func Validate(cfg *AppConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func unmarshal(path string, data []byte, cfg *AppConfig) error {
	if isTOML(path) {
		return toml.Unmarshal(data, cfg)
	}
	return yaml.Unmarshal(data, cfg)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Log:      LogConfig{Level: "info"},
		Chunker:  ChunkerConfig{Size: 500, Overlap: 50},
		Embedder: EmbedderConfig{Type: "hashing", Hashing: HashingEmbedderConfig{Dimension: 512}},
		Generator: GeneratorConfig{
			Type:        "gemini",
			Temperature: 0.3,
			MaxTokens:   2048,
			TimeoutSecs: 60,
		},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Summarizer:  SummarizerConfig{Type: "frequency", MaxSentences: 2},
		Retrieval:   RetrievalConfig{TopK: 5, GuidelineTopK: 2},
		Limits:      LimitsConfig{IngestMinChars: 50, AnalyzeMinChars: 20, AnalyzeMaxChars: 10000},
		Watch:       WatchConfig{Extensions: []string{".txt", ".md", ".html", ".pdf"}, DebounceMS: 500},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		o := cfg.Embedder.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "text-embedding-3-small"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 30
		}
		if o.MaxRetries == 0 {
			o.MaxRetries = 3
		}
	}
	if cfg.Embedder.Type == "gemini" {
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiEmbedderConfig{}
		}
		g := cfg.Embedder.Gemini
		if g.APIKeyEnv == "" {
			g.APIKeyEnv = "GEMINI_API_KEY"
		}
		if g.Model == "" {
			g.Model = "gemini-embedding-001"
		}
		if g.Dimension == 0 {
			g.Dimension = 768
		}
	}
	if cfg.Generator.APIKeyEnv == "" {
		switch cfg.Generator.Type {
		case "claude":
			cfg.Generator.APIKeyEnv = "ANTHROPIC_API_KEY"
		case "openai":
			cfg.Generator.APIKeyEnv = "OPENAI_API_KEY"
		default:
			cfg.Generator.APIKeyEnv = "GEMINI_API_KEY"
		}
	}
	if cfg.VectorStore.Path == "" {
		switch cfg.VectorStore.Type {
		case "badger":
			cfg.VectorStore.Path = filepath.Join("data", "badger")
		case "sqlite":
			cfg.VectorStore.Path = filepath.Join("data", "docqa.db")
		}
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant == nil {
		cfg.VectorStore.Qdrant = &QdrantConfig{URL: "http://localhost:6333"}
	}
	if q := cfg.VectorStore.Qdrant; q != nil {
		if q.Collection == "" {
			q.Collection = "docqa"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 10
		}
	}
}

// applyEnvOverrides applies DOCQA_* environment variables. Malformed numbers
// are ignored.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("DOCQA_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("DOCQA_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("DOCQA_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Chunker.Size = n
		}
	}
	if v := os.Getenv("DOCQA_CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Chunker.Overlap = n
		}
	}
	if v := os.Getenv("DOCQA_EMBEDDER_TYPE"); v != "" {
		cfg.Embedder.Type = v
		applyConfigDefaults(cfg)
	}
	if v := os.Getenv("DOCQA_GENERATOR_TYPE"); v != "" && v != cfg.Generator.Type {
		cfg.Generator.Type = v
		cfg.Generator.APIKeyEnv = ""
		cfg.Generator.Model = ""
		applyConfigDefaults(cfg)
	}
	if v := os.Getenv("DOCQA_GENERATOR_MODEL"); v != "" {
		cfg.Generator.Model = v
	}
	if v := os.Getenv("DOCQA_GENERATOR_BASE_URL"); v != "" {
		cfg.Generator.BaseURL = v
	}
	if v := os.Getenv("DOCQA_STORE_TYPE"); v != "" {
		cfg.VectorStore.Type = v
		applyConfigDefaults(cfg)
	}
	if v := os.Getenv("DOCQA_STORE_PATH"); v != "" {
		cfg.VectorStore.Path = v
	}
	if v := os.Getenv("DOCQA_QDRANT_URL"); v != "" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{Collection: "docqa", TimeoutSecs: 10}
		}
		cfg.VectorStore.Qdrant.URL = v
	}
	if v := os.Getenv("DOCQA_QDRANT_API_KEY"); v != "" && cfg.VectorStore.Qdrant != nil {
		cfg.VectorStore.Qdrant.APIKey = v
	}
	if v := os.Getenv("DOCQA_TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.TopK = n
		}
	}
}
