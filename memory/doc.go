// Package memory provides a per-(project, agent) semantic memory store for
// autonomous agents.
//
// Records live in isolated collections keyed by the
// (project, agent, embedding provider) triple; changing any component of
// the triple addresses a disjoint collection. Each record carries free-form
// text content, open-schema metadata, and an embedding vector used for
// similarity search. The vector itself is never exposed to callers.
//
// Architecture:
//   - Store: orchestrates validation, embedding, and collection access
//   - Backend: vector collection storage (chromem-go, embedded and persistent)
//   - Provider: text-to-vector conversion (local ONNX model, OpenAI API,
//     mock for tests, optional ristretto cache wrapper)
//   - Filter: metadata predicates applied to search results
//
// The store is synchronous and stateless across requests apart from the
// lazily loaded local embedding model and the lazily created collections,
// both guarded for concurrent first use.
package memory
