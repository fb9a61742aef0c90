// Package logger wraps zap with a process-wide sugared logger and helpers that
// carry it through context.Context.
//
// Log records go to stderr so that stdout stays reserved for the tool's own
// output, such as the completion message and rendered tables.
package logger
