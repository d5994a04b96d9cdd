// Package httputil provides HTTP fetching with retry for remote assets.
//
// # Overview
//
// Person photos are referenced by URL and fetched on demand. This package
// provides the transport pieces for that:
//
//   - [Client]: size-capped GET requests for binary assets
//   - [Retry]: automatic retry with exponential backoff
//
// # Fetching
//
// [Client.Fetch] performs a GET request and returns the body bytes along
// with the response Content-Type. Bodies are read through a size cap so a
// misbehaving server cannot balloon memory:
//
//	client := httputil.NewClient(0, map[string]string{"User-Agent": "stemma"})
//	data, mime, err := client.Fetch(ctx, url)
//
// # Retry
//
// Transient failures (network errors, 5xx responses) come back wrapped in
// [RetryableError] so callers can rerun the fetch with backoff:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    data, mime, err = client.Fetch(ctx, url)
//	    return err
//	})
//
// Permanent failures ([ErrNotFound], [ErrTooLarge], 4xx statuses) are
// returned immediately without retrying.
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Request timeout: 10 seconds
//   - Size cap: 5 MiB
//   - Max retries: 3
//   - Base backoff: 1 second
package httputil
