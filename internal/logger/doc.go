// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger writing to stderr with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level configuration and parsing utilities,
//   - an optional rotating audit file that receives every entry as JSON.
//
// Commands accept a context and extract the logger from it, enabling
// scoped, structured logging throughout the codebase.
package logger
