// Package source fetches novel directory listings and chapter bodies from
// the supported syosetu frontends. Each adapter turns site-specific HTML into
// plain chapter text with one paragraph per line; everything downstream of
// this package is site-agnostic.
package source
