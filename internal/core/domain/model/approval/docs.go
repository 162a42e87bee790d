// Package approval models the ringi-style sign-off workflow that gates sensitive
// order transitions. A gated transition attempt raises a Request; listed
// approvers approve or reject it, undecided requests expire lazily at their
// deadline, and an approved request authorizes exactly one transition.
//
// The package includes:
//   - Request: the aggregate for one sign-off, from PENDING to a settled status
//   - Status: the request lifecycle enumeration
//
// Key business rules:
//   - Only approvers on the request's allow-list may decide it
//   - A settled request never changes status again
//   - Expiry is evaluated on read against the caller's clock; no scheduler is
//     required for correctness
//   - A newer request for the same order and event supersedes a pending one
package approval
