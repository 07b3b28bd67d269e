// Package httpclient is the single request pipeline every backend call goes through.
//
// # Overview
//
// A Client is bound to a base URL and a timeout. The application builds two of
// them that differ only in timeout: a standard client (30s) and a long-running
// client (120s) for AI-bound operations such as document review and generation.
//
// # Request side
//
// Before every request the client asks its TokenSource for the current token.
// A non-empty token is sent as:
//
//	Authorization: Bearer <token>
//
// An empty token leaves the request unmodified. Each request also carries an
// X-Request-ID used to correlate debug logs.
//
// # Response side
//
// A 2xx response body is JSON-decoded straight into the caller's value. Anything
// else is a failure and is classified by Classify into one of four kinds:
//
//   - KindUnauthorized: the server replied 401
//   - KindRejected: any other non-2xx status, with the server's "detail" when present
//   - KindTimedOut: no response before the client timeout or context deadline
//   - KindNetwork: any other transport failure
//
// The classified Failure is handed to the FailureHandler exactly once per failing
// call and the original error is then returned to the caller wrapped in *Error,
// so call sites can add their own handling. Nothing is retried.
//
// # Presentation
//
// Classification is kept apart from its side effects. Presenter is the default
// FailureHandler: on 401 it clears the session, redirects to /login and shows a
// "session expired" notification; otherwise it shows a notification chosen by kind.
package httpclient
