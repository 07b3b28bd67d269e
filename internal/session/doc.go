// Package session holds the authenticated identity of the client.
//
// A Session owns two pieces of state: the bearer token and the cached profile
// of the user it belongs to. The token is persisted in a storage.Storage under
// storage.KeyToken so that a later process can pick it up again through Init.
// The user profile is never persisted; it is fetched again after every token
// acquisition.
//
// The invariant the rest of the client relies on is that IsAuthenticated
// reports true exactly when a non-empty token is held. Clear drops both the
// token and the user and removes the persisted copy. It is what the HTTP
// client calls on any 401 response, and it is safe to call repeatedly.
//
// Service wraps a Session with the operations that talk to the backend:
// Login, Register, Logout and FetchCurrentUser. Service depends on an
// Authenticator rather than on the API client directly, which keeps the
// construction order simple: the Session is built first, handed to the HTTP
// client as its token source and session clearer, and the Service is built
// last on top of the finished API client.
//
// Session is safe for concurrent use. Concurrent writers follow last writer
// wins; no operation is serialized against another.
package session
