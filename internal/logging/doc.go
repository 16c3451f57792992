// Package logging configures zap loggers and carries operation context on
// errors.
package logging
