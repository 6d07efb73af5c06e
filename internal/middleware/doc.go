// Package middleware provides HTTP middleware for the gallery server:
// request IDs, W3C access logging through the logging package, Prometheus
// request metrics labelled by route template, and gzip for JSON bodies.
package middleware
