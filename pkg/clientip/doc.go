// Package clientip extracts the client IP address of a request.
//
// Headers are checked in this order:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For, leftmost entry
//  4. X-Real-IP
//  5. RemoteAddr
//
// Every candidate is parsed and normalized; invalid values and 0.0.0.0 are
// skipped. Headers are client-controlled unless a trusted proxy overwrites
// them, so use the result for logging and throttling, not for authorization.
package clientip
