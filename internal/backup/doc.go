// Package backup provides physical database snapshots and a JSON
// interchange format for the concept store.
//
// Physical backups use VACUUM INTO, which produces a compact copy of a
// single committed view. Restore copies table-by-table from the attached
// backup inside one transaction, so a failed restore leaves the live
// database unchanged. Verification is advisory: it reports validity as a
// boolean and never fails.
//
// The JSON side round-trips every logical table through types.Snapshot,
// preserving row ids so relationships survive the trip.
package backup
