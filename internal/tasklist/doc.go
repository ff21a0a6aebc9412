// Package tasklist holds the authoritative in-memory task list and keeps it
// in step with storage.
//
// A Controller owns the ordered task slice (newest first), the search term,
// the active view, the create/edit form and its draft. Every mutation first
// awaits the storage call and then applies the in-memory change whether or
// not the write succeeded. Failed writes are remembered per task id and
// retried by Reconcile, which Initialize also runs before reloading, so a
// task whose delete failed is never brought back by a reload.
//
// The form is a closed set of variants:
//
//	Closed{}           nothing open
//	Creating{}         the add form
//	Editing{Target}    the edit form for Target
//
// Opening a form while another one is open is rejected.
package tasklist
