// Package logger provides slog construction and attribute helpers.
//
// Create a logger with New and options, or from environment settings with NewFromConfig:
//
//	log := logger.New(
//		logger.WithDevelopment("rememberme"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//
//	log.Info("server starting",
//		logger.Component("server"),
//		logger.Event("startup"),
//	)
//
// Attribute helpers return an empty slog.Attr for nil or empty input, so calls
// like log.Error("msg", logger.Error(err)) need no nil checks. Remember-me
// series are always logged through Series, which truncates them:
//
//	log.Warn("token theft detected",
//		logger.UserID(userID),
//		logger.Series(series),
//		logger.Count("revoked", n),
//	)
//
// Tests capture output with WithOutput and WithJSONFormatter:
//
//	var buf bytes.Buffer
//	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))
package logger
