// Package logging provides structured logging utilities for the
// email-ai-agent application.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (sender address anonymization)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "gmail.list")
//	logger.Info("listing unread messages", logging.Account(2))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("message fetched", logging.Sender(msg.From))
//
// # Security Considerations
//
// Sender addresses are hashed before logging to prevent PII leakage while
// still allowing correlation. Tokens and credentials are never logged.
package logging
