// Package logging builds the zap loggers used across the server.
//
// Production mode writes JSON, development mode writes colored console
// output. Both write to stderr by default.
//
//	logger, err := logging.New(logging.Config{Level: "debug", Development: true})
//	logger.Info("server starting", zap.String("addr", addr))
package logging
