// Package figma provides types, interfaces, and the request pipeline building
// blocks for working with the Figma REST API.
//
// # Overview
//
// The figma package defines the domain types (File, Comment, PublishedComponent,
// Webhook, ...) and the interfaces for resource-oriented clients (FilesClient,
// ComponentsClient, ...). A concrete implementation is provided by the
// figmaclient package, which wires configuration, authentication and the
// request executor. Most consumers should import figmaclient to construct a
// client and then use the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/figma-client/pkg/figmaclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := figmaclient.NewWithToken(ctx, "figd_...")
//	  if err != nil { log.Fatal(err) }
//
//	  body, err := cli.Execute(ctx, "GET", "/v1/me", nil, nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = body
//	}
//
// # Request pipeline
//
// Every call passes through the same stages: a ResponseCache lookup for GET
// requests, a token-bucket RateLimiter before each attempt, and a retry loop
// driven by RetryPolicy. Rate limited, network, timeout and 5xx failures are
// retried with exponential backoff plus jitter; a Retry-After header replaces
// the computed delay. Successful mutations evict cached responses under the
// mutated path and its parent listing.
//
// # Errors
//
// Failures are *Error values carrying an ErrorKind, the HTTP status, the
// attempt count and, for 429 responses, the Retry-After delay. Use KindOf,
// IsRetryable, IsNotFound, IsUnauthorized, IsForbidden, IsRateLimited and
// IsTimeout to branch on them; errors.As recovers the *Error through wrapping.
//
// # Pagination
//
// Paginate, PaginateItems and PaginateAs return iter.Seq2 sequences that
// fetch pages lazily and follow the cursor found in each page:
//
//	pr := figma.PageRequest{Request: req, ItemsKey: "meta.components", CursorParam: "after"}
//	for page, err := range figma.PaginateAs[figma.PublishedComponent](ctx, exec, pr) {
//	  if err != nil { break }
//	  _ = page
//	}
//
// CollectAll drains a traversal into a single slice.
//
// # Caching
//
// MemoryCache is a bounded in-process store evicting its oldest entry;
// NATSKVCache shares responses between processes through a NATS JetStream
// key-value bucket. NewCacheFromConfig selects one from a CacheConfig.
package figma
