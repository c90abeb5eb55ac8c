// Package services talks to the Spotify accounts and Web APIs on behalf of the login flow.
//
// # Spotify Implementation
//
// [SpotifyService] wraps an [oauth2.Config] carrying Spotify's endpoints, the registered client credentials,
// and the fixed [Scopes] list. It builds the authorization URL, exchanges authorization codes for tokens
// using HTTP Basic client authentication, and fetches the current user's profile with the bearer token.
//
// # Error Handling
//
// Failures are returned as [*ProviderError], which unwraps to one of:
//   - [shared.ErrTokenExchangeFailed] : the token endpoint rejected the request or was unreachable
//   - [shared.ErrProfileFetchFailed] : the profile endpoint rejected the request or was unreachable
//   - [shared.ErrProviderResponseMalformed] : a 2xx response lacked a required field or was not JSON
//
// The provider's response body is kept on the error for server-side logging only.
package services
