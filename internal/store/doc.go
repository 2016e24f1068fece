// Package store persists clinic owners and pets for the development API
// server.
//
// [SQLStore] speaks database/sql and supports two drivers:
//
//   - sqlite (modernc.org/sqlite, pure Go, the default)
//   - mysql (github.com/go-sql-driver/mysql)
//
// Schema migrations are embedded per dialect and applied by [Open].
// Birth dates are stored as ISO text (YYYY-MM-DD) so that range filters and
// ordering behave identically on both engines.
package store
