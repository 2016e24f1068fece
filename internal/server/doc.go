// Package server is a small development API that serves the clinic's pet
// and client listings from a [store.Store].
//
// Routes:
//
//	GET  /api/consult-mascotas/  paginated, searchable, sortable pets
//	POST /api/create-pet/        register a pet for an existing client
//	GET  /api/consult-client/    paginated clinic clients
//	GET  /healthz                database liveness
//
// Listings answer with {count, next, previous, results}. The page size
// defaults to 10 and is capped at 100, and a page past the end is a 404.
package server
