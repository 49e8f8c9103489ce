// Package httputil provides the HTTP client used to import sessions from
// URLs.
//
// # Retries
//
// [Client.Fetch] repeats a GET after transport failures, 5xx responses and
// 429 rate limits. Waits double from [Client.Delay]; a Retry-After header
// asking for longer is honored, and [Client.MaxDelay] caps every wait. Other
// statuses fail at once with a [StatusError]:
//
//	data, err := httputil.Fetch(ctx, "https://example.org/net.json.gz")
//
// # Observability
//
// Every request is reported to the [observability.HTTPHooks] registered with
// the observability package.
package httputil
