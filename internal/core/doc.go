// Package core provides the business logic for migrating the legacy card export.
//
// This package is the heart of the migration tool, containing all domain logic
// independent of any store driver or command line surface. It can be used by
// the CLI, ad-hoc scripts, or tests without modification.
//
// # Architecture
//
// A run is a straight pipeline over an in-memory slice:
//
//  1. [LoadExport] reads the export file into ordered [LegacyRecord] values.
//     Any failure here is fatal and happens before the first write.
//  2. [TransformRow] maps each record to a [CanonicalDocument]. It never fails;
//     a field that cannot be derived is simply left out.
//  3. [Writer] persists the document through a [Store]: an upsert by ID when the
//     document has one, a plain insert otherwise.
//  4. [Reporter] turns each row into an [Outcome] and folds it into a
//     [RunSummary], logging failures as they happen.
//
// [Service.Run] wires the four steps together.
//
// # Field Aliases
//
// Legacy exports spell their keys inconsistently. Each canonical field has an
// ordered alias list (uppercase first); the first alias holding a non-null
// value wins, with a case-insensitive pass as fallback:
//
//	ID          -> ID, id
//	name        -> NAME, name
//	type        -> TYPE, type
//	rarity      -> RARITY, rarity
//	image       -> IMAGE, image
//	dateAdded   -> DATE_ADDED, date_added, dateAdded
//
// # Error Handling
//
// Load failures are returned as [*LoadError]. Write failures are returned as
// [*WriteError], recorded as skipped rows and never stop the loop. [MapError]
// maps both to coded messages for the summary and the logs.
package core
