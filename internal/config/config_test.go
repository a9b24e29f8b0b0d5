package config

import "testing"

func validConfig() Config {
	cfg := Config{
		HTTP:       HTTPConfig{Port: 8080},
		Embedding:  EmbeddingConfig{APIKey: "test-key", Model: "text-embedding-3-small"},
		Generation: GenerationConfig{Model: "gpt-4o-mini"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []int{0, -1, 70000} {
		cfg := validConfig()
		cfg.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for port %d", port)
		}
	}
}

func TestValidate_MissingModels(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing embedding model")
	}

	cfg = validConfig()
	cfg.Generation.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing generation model")
	}
}

func TestValidate_OverlapNotBelowChunkSize(t *testing.T) {
	cfg := validConfig()
	cfg.Chunking.ChunkWords = 40
	overlap := 40
	cfg.Chunking.OverlapWords = &overlap
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when overlap >= chunk size")
	}
}

func TestValidate_NegativeOverlapAndThreshold(t *testing.T) {
	cfg := validConfig()
	overlap := -1
	cfg.Chunking.OverlapWords = &overlap
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative overlap")
	}

	cfg = validConfig()
	threshold := float32(-0.1)
	cfg.Retrieval.GroundedThreshold = &threshold
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative grounded threshold")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Storage.IndexDir != "data/indexes" {
		t.Errorf("expected IndexDir=data/indexes, got %q", cfg.Storage.IndexDir)
	}
	if cfg.Chunking.ChunkWords != 180 {
		t.Errorf("expected ChunkWords=180, got %d", cfg.Chunking.ChunkWords)
	}
	if cfg.Chunking.OverlapWords == nil || *cfg.Chunking.OverlapWords != 40 {
		t.Errorf("expected OverlapWords=40, got %v", cfg.Chunking.OverlapWords)
	}
	if cfg.Retrieval.TopK != 4 {
		t.Errorf("expected TopK=4, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.GroundedThreshold == nil || *cfg.Retrieval.GroundedThreshold != 0.25 {
		t.Errorf("expected GroundedThreshold=0.25, got %v", cfg.Retrieval.GroundedThreshold)
	}
	if cfg.Embedding.EmbedConcurrency != 4 {
		t.Errorf("expected EmbedConcurrency=4, got %d", cfg.Embedding.EmbedConcurrency)
	}
}

func TestApplyDefaults_ExplicitZerosPreserved(t *testing.T) {
	overlap := 0
	threshold := float32(0)
	cfg := Config{}
	cfg.Chunking.OverlapWords = &overlap
	cfg.Retrieval.GroundedThreshold = &threshold
	cfg.ApplyDefaults()

	if cfg.Chunking.OverlapWords == nil || *cfg.Chunking.OverlapWords != 0 {
		t.Errorf("explicit zero overlap must survive defaulting, got %v", cfg.Chunking.OverlapWords)
	}
	if cfg.Retrieval.GroundedThreshold == nil || *cfg.Retrieval.GroundedThreshold != 0 {
		t.Errorf("explicit zero threshold must survive defaulting, got %v", cfg.Retrieval.GroundedThreshold)
	}
}

func TestApplyDefaults_GenerationFallsBackToEmbeddingCreds(t *testing.T) {
	cfg := Config{
		Embedding: EmbeddingConfig{
			APIKey:  "shared-key",
			BaseURL: "https://api.example.com/v1/",
		},
	}
	cfg.ApplyDefaults()

	if cfg.Generation.APIKey != "shared-key" {
		t.Errorf("expected generation api key fallback, got %q", cfg.Generation.APIKey)
	}
	if cfg.Generation.BaseURL != "https://api.example.com/v1/" {
		t.Errorf("expected generation base url fallback, got %q", cfg.Generation.BaseURL)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DOCSENSE_TEST_KEY", "secret")

	in := []byte("api_key: ${DOCSENSE_TEST_KEY}\nbase_url: ${DOCSENSE_TEST_URL:-https://fallback/v1}\n")
	out := string(expandEnvVars(in))

	want := "api_key: secret\nbase_url: https://fallback/v1\n"
	if out != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", out, want)
	}
}
