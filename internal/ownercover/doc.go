// Package ownercover decides what the assistant may do with an inbound
// customer message on the owner's behalf.
//
// Evaluation is a pure function of tenant settings, message text and the
// wall-clock time. It has no side effects and never fails: unparsable
// quiet-hour bounds disable quiet hours instead of producing an error.
// Persisting the resulting action and audit records is the caller's job.
package ownercover
