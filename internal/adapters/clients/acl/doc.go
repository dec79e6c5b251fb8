// Package acl translates downstream service payloads into domain types and
// downstream failures into errors the API error pipeline understands.
//
// Upstream responses map as follows:
//   - 404 becomes a [domain.NotFoundError] for the looked-up entity
//   - 400/422 with field details becomes a [domain.ValidationError]
//   - 401/403 becomes a 502, since the caller cannot fix our credentials
//   - 429 keeps its status and Retry-After header
//   - any other error status is passed through as an [apierror.ResponseError]
//
// An open circuit becomes a 503 carrying Retry-After. Transport failures are
// wrapped with a stack trace and stay unclassified, so they are logged.
package acl
