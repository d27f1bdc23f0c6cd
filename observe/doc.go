// Package observe provides observability primitives for authentication
// attempts.
//
// It wraps any auth.Authenticator with a span per attempt, attempt counters
// split by outcome, a duration histogram and a structured log line. Results
// and errors pass through unchanged. Credential fields such as signature and
// challenge are redacted from log output.
//
// The package performs no I/O beyond exporter setup; hosts decide where the
// instrumented strategy is mounted.
package observe
