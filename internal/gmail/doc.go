// Package gmail provides the mail-source client for the email-ai-agent
// pipeline.
//
// The client covers three concerns:
//   - Query building: the Gmail search expression bounding which unread
//     messages are considered (time window, category exclusions, optional
//     label filter).
//   - Listing: unread message identifiers per account slot, capped per run.
//   - Fetching: retrieval and decoding of a single message into the
//     normalized Message structure, with minimum-content filtering.
//
// Authentication uses the shared OAuth app credentials plus a per-slot
// refresh token (golang.org/x/oauth2). Token acquisition is out of scope;
// the tokens are expected to already exist in the configuration.
//
// Unconfigured accounts are treated as zero capacity: listing returns an
// empty slice and fetching returns nil, neither is an error. Transport
// failures are returned to the caller, which isolates them per account.
package gmail
