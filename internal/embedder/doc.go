// Package embedder generates dense vector embeddings for concept texts.
//
// Three providers are supported: Jina AI and OpenAI over HTTP (with retry
// and exponential backoff), and a deterministic local hash embedder that
// needs no network and is stable across processes. The factory selects a
// provider from SEMSPACE_EMBEDDING_PROVIDER or available API keys, falling
// back to local.
//
// Embeddings are cached in an LRU keyed by the SHA-256 of the input text,
// so repeated concept upserts do not re-call the provider.
//
// The coordinate engine uses embeddings only as a fallback when the keyword
// scorer has no signal; the query engine uses them for semantic search when
// both the query and stored concepts carry vectors.
package embedder
