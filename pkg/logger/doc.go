// Package logger builds configured log/slog loggers with context-aware
// attribute injection.
//
// The factory wraps the chosen slog handler in a ContextHandler that
// runs registered extractors on every log call, which is how tenant
// and request identifiers land on each record without any call site
// passing them explicitly:
//
//	log := logger.New(
//		logger.WithService("gateway"),
//		logger.WithContextExtractors(
//			tenantctx.LoggerExtractor(),
//			requestid.LoggerExtractor(),
//		),
//	)
package logger
