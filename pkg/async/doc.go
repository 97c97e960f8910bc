// Package async runs functions in goroutines behind a small Future
// API with await-with-timeout semantics.
//
// Tasks inherit the caller's context.Context at creation time, which
// is exactly how the tenant context carrier survives asynchronous
// hand-offs: a future spawned inside an established tenant scope sees
// the same tenant binding, and one spawned outside sees none. The
// gateway uses AwaitWithTimeout to put a budget on tenant directory
// resolution without detaching it from the request's cancellation.
package async
