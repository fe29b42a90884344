// Package compass holds the shared model and contract layer for the Compass
// technology catalog: catalog entries (solutions), curation metadata
// (categories, groups, tags), users, history records, and the standard
// response envelope every list/read endpoint uses.
//
// Session lifecycle:
//   - The session subpackage owns the authenticated session (token plus
//     cached user). It initializes optimistically from persisted storage,
//     revalidates against the API in the background, and publishes the
//     current identity on a replay-latest stream. A 401 from any
//     authenticated call invalidates the session centrally.
//
// Status changes:
//   - recommend_status and review_status are controlled fields. Edits go
//     through the workflow subpackage, which gates each transition behind a
//     mandatory justification and folds repeated edits to the same field
//     into a single net transition before commit. The server records every
//     committed transition as an immutable history record with field-level
//     diffs.
//
// The server subpackage implements the catalog API itself (fiber + bun);
// the client subpackage is the typed HTTP consumer the session manager,
// guards, and CLI are built on.
package compass
