// Package httputil holds the HTTP plumbing shared by the drawalign API:
// JSON request and response helpers, the error envelope, and middleware for
// request logging and observability hooks.
//
// Every error response has the same shape:
//
//	{"success": false, "code": "INVALID_POINT", "message": "baseA: point (NaN, 0) is not finite"}
//
// with the HTTP status derived from the code by errors.HTTPStatus.
package httputil
