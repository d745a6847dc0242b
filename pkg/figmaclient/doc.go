// Package figmaclient provides the primary entry point for constructing a
// Figma REST API client that implements the figma.Client interface.
//
// It layers configuration, authentication, the response cache, the rate
// limiter and the retry loop on top of the resource interfaces and types
// defined in the figma package. Most applications should import figmaclient to
// build a client, then use the returned figma.Client to reach the resource
// clients, for example Files(), Components() or Webhooks().
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/figma-client/pkg/figma"
//	  "github.com/fivetwenty-io/figma-client/pkg/figmaclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Personal access token with every default.
//	  cli, err := figmaclient.NewWithToken(ctx, "figd_...")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or tune retries, throttling and caching:
//	  config := figma.DefaultConfig()
//	  config.AccessToken = "figd_..."
//	  config.TokenHeader = "X-Figma-Token"
//	  config.MaxRetries = 5
//	  config.RateLimit = &figma.RateLimitConfig{Capacity: 10, RefillPerSecond: 2}
//	  config.Cache = &figma.CacheConfig{Type: figma.CacheTypeNone}
//	  cli, err = figmaclient.New(ctx, config)
//	  if err != nil { log.Fatal(err) }
//
//	  file, err := cli.Files().Get(ctx, "FILE_KEY", &figma.GetFileParams{Depth: 1})
//	  if err != nil { log.Fatal(err) }
//	  _ = file
//	}
//
// # Authentication
//
// New requires either Config.AccessToken or Config.OAuth2 with a refresh
// token. NewWithOAuth2 builds the latter; the access token is then obtained
// and renewed through the OAuth2 refresh endpoint.
//
// # Helpers
//
// NewWithToken and NewWithOAuth2 wrap New with figma.DefaultConfig and the
// matching credentials.
package figmaclient
