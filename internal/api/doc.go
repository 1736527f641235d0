// Package api provides the JSON REST API server for answerdesk.
//
// # Architecture
//
// The server uses Go 1.22+ method routing with a layered middleware stack:
//
//	RequestID → Recovery → Logging → RateLimit → Routes
//
// Health probes (/healthz, /readyz) bypass the middleware stack via a
// top-level mux, ensuring they remain fast and never rate limited.
//
// # Endpoints
//
// Health probes (no middleware):
//   - GET /healthz — liveness, returns {"status":"ok"}
//   - GET /readyz  — readiness, pings the database pool when configured
//
// Bot management:
//   - POST   /api/v1/bots        — create bot
//   - GET    /api/v1/bots        — list bots
//   - GET    /api/v1/bots/{id}   — get bot
//   - PATCH  /api/v1/bots/{id}   — partial update
//   - DELETE /api/v1/bots/{id}   — delete bot and everything it owns
//
// Knowledge sources:
//   - POST   /api/v1/bots/{id}/sources            — ingest pdf/text/url
//   - GET    /api/v1/bots/{id}/sources            — list a bot's sources
//   - DELETE /api/v1/sources/{id}                 — delete source wholesale
//   - PUT    /api/v1/bots/{id}/sources/{sourceId} — assign to allow-list
//   - DELETE /api/v1/bots/{id}/sources/{sourceId} — unassign
//
// Chat:
//   - POST /api/v1/bots/{id}/chat — one grounded turn
//
// Transcripts:
//   - GET /api/v1/bots/{id}/conversations     — list conversations
//   - GET /api/v1/conversations/{id}/messages — full transcript
//
// # Error Handling
//
// Errors use an envelope: {"error": {"code": "...", "message": "..."}}.
// Domain errors map onto the surface as: malformed input 400, missing
// entities 404, unusable sources 422, upstream model failures 503, and
// panics 500 via the recovery middleware.
package api
