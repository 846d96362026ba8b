// Package artifact manages structured results extracted from assistant
// responses (tables, code, charts, alert lists) for display in the side
// panel.
//
// The Store owns every artifact for the lifetime of a chat view. Artifacts
// arrive either declared by the backend stream or extracted from [ARTIFACT]
// marker spans; in both cases identity is the artifact id and duplicates are
// rejected, so re-extraction over a growing stream buffer can never create a
// second entry.
//
// The pinned set has a lifecycle independent of the artifact list: clearing
// the list keeps pins, so a re-detected artifact comes back pinned.
//
// Thread Safety: Store is safe for concurrent use.
package artifact
