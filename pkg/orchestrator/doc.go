// Package orchestrator resolves form schemas from catalog templates, free-text
// descriptions, JSON/YAML definitions or OpenAPI operations, and renders them
// through a name-keyed registry of renderers.
package orchestrator
