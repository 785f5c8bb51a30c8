package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/fiscal-extract/constants"
)

// Config holds all application configuration
type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	OCR    OCRConfig    `yaml:"ocr"`
	Cache  CacheConfig  `yaml:"cache"`
	Server ServerConfig `yaml:"server"`
	Batch  BatchConfig  `yaml:"batch"`
	XML    XMLConfig    `yaml:"xml"`
}

// LLMConfig selects and configures the model that turns OCR text into a record.
type LLMConfig struct {
	Provider    string        `yaml:"provider"` // openai | vertex | none
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxTokens   int           `yaml:"max_tokens"`
	// DisableJSONMode drops response_format for OpenAI-compatible servers without JSON mode.
	DisableJSONMode bool `yaml:"disable_json_mode"`

	VertexProject string `yaml:"vertex_project"`
	VertexRegion  string `yaml:"vertex_region"`
	VertexModel   string `yaml:"vertex_model"`
}

type OCRConfig struct {
	TesseractPath string `yaml:"tesseract_path"`
	PdftoppmPath  string `yaml:"pdftoppm_path"`
	Lang          string `yaml:"lang"`
	TessdataDir   string `yaml:"tessdata_dir"`
	DPI           int    `yaml:"dpi"`
	MaxPages      int    `yaml:"max_pages"`
}

// CacheConfig configures the processed-record cache.
type CacheConfig struct {
	Driver   string `yaml:"driver"` // none | memory | sqlite | postgres
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"max_conns"`
}

type ServerConfig struct {
	GRPCAddr     string `yaml:"grpc_addr"`
	MaxBodyBytes int    `yaml:"max_body_bytes"`
}

type BatchConfig struct {
	Workers int `yaml:"workers"`
}

type XMLConfig struct {
	Namespaces []string `yaml:"namespaces"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:     "openai",
			Model:        "gpt-4o-mini",
			BaseURL:      "https://api.openai.com/v1",
			Timeout:      60 * time.Second,
			VertexRegion: "us-central1",
			VertexModel:  "gemini-2.5-flash",
		},
		OCR: OCRConfig{
			TesseractPath: "tesseract",
			PdftoppmPath:  "pdftoppm",
			Lang:          "por",
			DPI:           300,
			MaxPages:      20,
		},
		Cache: CacheConfig{
			Driver:   "memory",
			MaxConns: 5,
		},
		Server: ServerConfig{
			GRPCAddr:     ":8080",
			MaxBodyBytes: 16 << 20,
		},
		Batch: BatchConfig{Workers: 4},
		XML:   XMLConfig{Namespaces: []string{constants.NFeNamespace}},
	}
}

// LoadConfig loads configuration from environment variables, after reading a
// .env file from the working directory when one exists.
func LoadConfig() *Config {
	_ = godotenv.Load()
	cfg := DefaultConfig()
	applyEnv(cfg)
	return cfg
}

// LoadConfigFile layers defaults, then the YAML file at path, then environment
// variables. An empty path behaves like LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	_ = godotenv.Load()
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError(CodeConfig, "read config file", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, NewAppError(CodeConfig, fmt.Sprintf("parse config file %s", path), err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(c *Config) {
	c.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", c.LLM.Provider))
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.Model = getEnv("OPENAI_MODEL", c.LLM.Model)
	c.LLM.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.BaseURL)
	c.LLM.Temperature = getEnvAsFloat32("LLM_TEMPERATURE", c.LLM.Temperature)
	c.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.MaxTokens = getEnvAsInt("LLM_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.DisableJSONMode = getEnvAsBool("OPENAI_DISABLE_JSON_MODE", c.LLM.DisableJSONMode)
	c.LLM.VertexProject = getEnv("VERTEX_PROJECT_ID", c.LLM.VertexProject)
	c.LLM.VertexRegion = getEnv("VERTEX_REGION", c.LLM.VertexRegion)
	c.LLM.VertexModel = getEnv("VERTEX_MODEL", c.LLM.VertexModel)

	c.OCR.TesseractPath = getEnv("TESSERACT_PATH", c.OCR.TesseractPath)
	c.OCR.PdftoppmPath = getEnv("PDFTOPPM_PATH", c.OCR.PdftoppmPath)
	c.OCR.Lang = getEnv("TESSERACT_LANG", c.OCR.Lang)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.DPI = getEnvAsInt("OCR_DPI", c.OCR.DPI)
	c.OCR.MaxPages = getEnvAsInt("OCR_MAX_PAGES", c.OCR.MaxPages)

	c.Cache.Driver = strings.ToLower(getEnv("CACHE_DRIVER", c.Cache.Driver))
	c.Cache.DSN = getEnv("CACHE_DSN", c.Cache.DSN)
	c.Cache.MaxConns = getEnvAsInt32("CACHE_MAX_CONNS", c.Cache.MaxConns)

	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.MaxBodyBytes = getEnvAsInt("GRPC_MAX_BODY_BYTES", c.Server.MaxBodyBytes)

	c.Batch.Workers = getEnvAsInt("BATCH_WORKERS", c.Batch.Workers)

	if v := getEnv("XML_NAMESPACES", ""); v != "" {
		var ns []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				ns = append(ns, part)
			}
		}
		c.XML.Namespaces = ns
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration. Provider credentials are checked
// when the provider client is built, so XML-only runs need no API key.
func (c *Config) Validate() error {
	v := NewValidator().
		Field("LLM_PROVIDER", c.LLM.Provider, OneOf("openai", "vertex", "none")).
		Field("CACHE_DRIVER", c.Cache.Driver, OneOf("none", "memory", "sqlite", "postgres")).
		Field("GRPC_ADDR", c.Server.GRPCAddr, Required).
		Field("BATCH_WORKERS", c.Batch.Workers, Positive).
		Field("OCR_MAX_PAGES", c.OCR.MaxPages, Positive).
		Field("OCR_DPI", c.OCR.DPI, Positive)

	if c.Cache.Driver == "sqlite" || c.Cache.Driver == "postgres" {
		v.Field("CACHE_DSN", c.Cache.DSN, Required)
	}
	if c.LLM.Provider == "vertex" {
		v.Field("VERTEX_PROJECT_ID", c.LLM.VertexProject, Required)
	}
	if err := v.Error(); err != nil {
		return NewAppError(CodeConfig, "invalid configuration", err)
	}
	return nil
}
