// Package adapters talks to the music services behind one interface.
//
// Spotify:
//  1. Register an application at https://developer.spotify.com/my-applications/
//     with "http://localhost:8080/callback" as the redirect URI.
//  2. Set SPOTIFY_ID to the client id. The client secret is asked for when
//     logging in, or read from SPOTIFY_SECRET.
//
// YouTube:
//  1. Enable the YouTube Data API v3 at https://console.developers.google.com/
//     and create OAuth 2.0 desktop credentials.
//  2. Set YOUTUBE_CLIENT_ID. The client secret is asked for when logging in,
//     or read from YOUTUBE_CLIENT_SECRET.
//
// Tokens are cached per user and device id, so the browser is only needed
// on the first login.
package adapters
