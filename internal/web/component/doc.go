// Package component provides the templ UI components for the console web
// interface.
//
// This package contains atomic components (message bubbles, suggestion
// chips, pagination) and composite ones (artifact panel, PII log table,
// pages) used to build the chat and viewer surfaces.
//
// Component design principles:
//   - All components use Props structs for configuration
//   - Every dynamic string is escaped on output; pre-rendered HTML enters
//     only through fields explicitly named *HTML and produced by the
//     markdown renderer, which escapes raw HTML itself
//   - Components carry their own accessibility attributes
package component
