// Package services defines the [Catalog] interface for the remote music
// catalog and implements it for Spotify.
//
// # Catalog Interface
//
// Handlers, commands, and the generation engine program against [Catalog]
// so tests can substitute an in-memory implementation.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token
// refresh and paces outbound requests with a [rate.Limiter].
//
// Paged endpoints are normalized to [smart.Page]: offset collections
// carry items/total/limit/offset, the cursor-paged followed-artists
// collection carries the next cursor in Next.
//
// # Track Sources
//
// [SavedTracksSource] and [TopTracksSource] adapt catalog collections to
// [smart.TrackSource] so the generation pipeline can page through them.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrMissingCredentials] : incomplete OAuth configuration
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
package services
