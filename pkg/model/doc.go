// Package model exposes the typed form schema shared by every other package:
// the closed set of field kinds, conditional visibility rules, the ordered
// FormSchema and the FormData answers keyed by field id. Answers are stored as
// a tagged Value variant (text, number, list, bool, blob) so validators can
// switch on the field kind instead of inspecting arbitrary interface values.
// Implementations live in internal/model; this package re-exports them.
package model
