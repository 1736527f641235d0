// Package knowledge persists the retrievable knowledge of a bot and ranks
// it against query embeddings.
//
// Chunks are grouped by their Source (the shared source id is the single
// authoritative grouping), owned by one bot, and never edited: ingestion
// writes a source's whole chunk set atomically and deletion removes it
// wholesale. Which sources a bot may retrieve from is a separate allow-list
// (the bot/source assignment) so knowledge can be detached from a bot
// without destroying it.
//
// Retrieval is a deliberate brute-force scan: every chunk of the bot's
// assigned sources is compared against the query vector with cosine
// similarity. Cost is O(total assigned chunks) per query, which bounds the
// practical knowledge-base size; there is no index structure and adding one
// would change observable ranking semantics.
//
// Two store implementations exist: Store (PostgreSQL + pgvector, the
// production path) and MemoryStore (mutex-guarded maps for tests).
package knowledge
