// Package auth implements the request authorization chain: bearer token extraction,
// JWT verification against a trusted signing-key set, and permission checks.
//
// Every failure is an *Error whose Kind names the stage that rejected the request.
package auth
