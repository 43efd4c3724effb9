// Package wikipedia implements best-effort article lookup for child
// places via the MediaWiki opensearch API.
//
// Enrichment is decorative, so the client never returns an error: any
// transport, status or parse failure degrades to an empty result and
// the pipeline carries on.
package wikipedia
