// Package database provides the local annotation store.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── annotations.go   # AnnotationStore: the combined store used by the repository
//	├── summaries/       # summary table (one row per uid + volumeId)
//	└── memos/           # highlight_memo table
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./bookmemo.db", logger)
//
//	summariesRepo := summaries.NewRepository(db.DB)
//	memosRepo := memos.NewRepository(db.DB)
//
//	// or, for the full store contract:
//	store := database.NewAnnotationStore(db, collector)
//
// # Concurrency
//
// The sqlite handle is limited to a single open connection, so statements
// from concurrent callers are serialized. Summary writes use a single
// INSERT .. ON CONFLICT DO UPDATE statement, so a replaced row is never
// partially visible.
//
// # Errors
//
// Missing rows are reported as apperrors.ErrNotFound. Every other failure is
// wrapped in *apperrors.StoreError.
package database
