// Package httpapi exposes the solver over REST with gin.
//
// Routes:
//
//	GET  /health  liveness probe
//	GET  /corpus  reference corpus summary
//	POST /solve   multipart "image" upload or JSON {"image_base64": "..."}
//
// Every /solve response carries a fresh request id in the body and in the
// X-Request-ID header. Bodies above the upload cap get 413, non-image
// uploads 415, undecodable images 400. When a JWT secret is configured,
// /solve requires an HS256 bearer token.
package httpapi
