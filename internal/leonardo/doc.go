// Package leonardo is an HTTP client for a remote image-generation service that
// follows the Leonardo.ai REST shape.
//
// # Overview
//
// Generation is asynchronous. A submission returns a generation id; the result is
// collected by polling the generation until it completes, fails, or the attempt
// budget runs out.
//
//	POST /generations          -> {"sdGenerationJob": {"generationId": "..."}}
//	GET  /generations/{id}     -> {"generations_by_pk": {"status": "...", "generated_images": [...]}}
//
// Every request carries a bearer token. A client is never built without one:
// NewClient returns ErrNoCredentials for an empty key so callers can skip the
// remote path entirely.
//
// # Polling
//
// PollPolicy holds the attempt budget and the fixed spacing (defaults: 30 attempts,
// one second apart). The client waits one interval before every status check, so
// the default budget is a soft cap of about thirty seconds. Polling runs on
// cenkalti/backoff with a constant backoff and a max-tries limit:
//
//   - PENDING (or any unknown status): retry after the interval
//   - COMPLETE: return the first generated image
//   - FAILED: stop immediately with ErrGenerationFailed
//   - non-2xx status check: stop immediately with a *StatusError
//   - transport or decode errors: stop immediately with that error
//
// When the budget is spent WaitForGeneration returns ErrPollExhausted.
//
// # Error Handling
//
// All errors are wrapped with the step that failed (submit, poll, decode). Use
// errors.Is with the sentinels and errors.As with *StatusError.
//
// # Testing Considerations
//
// Point the client at an httptest server with WithBaseURL and shrink the poll
// interval with WithPollPolicy; nothing in the package sleeps on a hidden constant.
package leonardo
