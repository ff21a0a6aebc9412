// Package todo maps tasks onto a key-value store.
//
// Every task lives under its own key, "todo:<id>", holding a JSON document:
//
//	{
//	  "id": 1718031234567,
//	  "title": "Write report",
//	  "description": "Q3 summary",
//	  "completed": false,
//	  "dateCreated": "June 10, 2024 at 02:53 PM"
//	}
//
// # Loading
//
// Store.ListAll enumerates the "todo:" prefix, fetches the values in
// parallel and decodes each one. Values are checked against an embedded
// JSON Schema (draft 2020-12) before decoding. Entries that cannot be
// fetched, fail validation, or whose id disagrees with their key are
// dropped and logged at debug level. A failed listing yields no tasks.
//
// # Writing
//
// Store.Save and Store.Remove log failures at error level and return them,
// so callers can decide whether to retry. A delete of a missing key is not
// an error.
//
// # Ids
//
// IDGenerator hands out millisecond timestamps, bumped by one whenever the
// clock has not moved past the last issued or observed id.
package todo
