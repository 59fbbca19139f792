// Package core provides the business logic for property CSV imports.
//
// This package contains all domain logic independent of any transport. The
// web server and the propimport CLI both drive it through [Importer].
//
// # Pipeline
//
// One import is a single pass over the source:
//
//  1. [Decoder] reads rows, strictly enforcing the source encoding
//     (UTF-8 by default, legacy sets such as Shift_JIS on request)
//  2. [Validator] turns each row into a [PropertyRecord] or a
//     [ValidationFailure], resolving building type labels via [CategoryMap]
//  3. [ErrorAggregator] keeps failures in source order, capped for display
//  4. [Coordinator] writes the records in batches of [DefaultBatchSize]
//     inside one transaction from a [Store]
//  5. [BuildSummary] produces the [ImportResult]
//
// Decoding and validation finish before any write. Invalid rows are skipped
// and reported; any decode or write failure is an [*ImportError] and leaves
// the store untouched. [Importer.Preview] runs steps 1 to 3 only.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB007: Database errors (duplicates, constraints, connections)
//   - FILE001-FILE007: File errors (size, format, encoding)
//   - IMP001-IMP003: Import run errors (busy, cancelled, timed out)
//   - RATE001: Rate limiting
//
// [ImportLimiter] bounds how many imports run at once.
package core
