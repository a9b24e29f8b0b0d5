package docsense

import (
	"go.uber.org/zap"

	"github.com/docsense/docsense/internal/chunker"
	"github.com/docsense/docsense/internal/domain"
	answeruc "github.com/docsense/docsense/internal/usecase/answer"
)

type clientConfig struct {
	indexDir string

	apiKey  string
	baseURL string

	embedModel string
	dimensions int

	chatModel   string
	temperature float32

	chunkWords   int
	overlapWords int

	topK      int
	threshold float32

	embedder  domain.Embedder
	generator domain.Generator

	logger *zap.Logger
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		embedModel:   "text-embedding-3-small",
		chatModel:    "gpt-4o-mini",
		chunkWords:   chunker.DefaultChunkWords,
		overlapWords: chunker.DefaultOverlapWords,
		topK:         answeruc.DefaultTopK,
		threshold:    answeruc.DefaultGroundedThreshold,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithIndexDir sets the directory holding per-document index artifacts.
func WithIndexDir(dir string) Option {
	return func(c *clientConfig) { c.indexDir = dir }
}

// WithOpenAI sets the provider credentials. baseURL may be empty for the
// default endpoint; any OpenAI-compatible server works.
func WithOpenAI(apiKey, baseURL string) Option {
	return func(c *clientConfig) {
		c.apiKey = apiKey
		c.baseURL = baseURL
	}
}

// WithEmbeddingModel overrides the embedding model. dimensions 0 keeps the
// model's native width.
func WithEmbeddingModel(model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.embedModel = model
		c.dimensions = dimensions
	}
}

// WithGenerationModel overrides the chat model used for answers.
func WithGenerationModel(model string, temperature float32) Option {
	return func(c *clientConfig) {
		c.chatModel = model
		c.temperature = temperature
	}
}

// WithChunking overrides the word-window chunking parameters.
func WithChunking(chunkWords, overlapWords int) Option {
	return func(c *clientConfig) {
		c.chunkWords = chunkWords
		c.overlapWords = overlapWords
	}
}

// WithRouting overrides the retrieval depth and the grounded threshold.
func WithRouting(topK int, threshold float32) Option {
	return func(c *clientConfig) {
		c.topK = topK
		c.threshold = threshold
	}
}

// WithEmbedder replaces the OpenAI embedder with a custom one. The vector is
// still L2-normalized by the client.
func WithEmbedder(e domain.Embedder) Option {
	return func(c *clientConfig) { c.embedder = e }
}

// WithGenerator replaces the OpenAI generator with a custom one.
func WithGenerator(g domain.Generator) Option {
	return func(c *clientConfig) { c.generator = g }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
