// Package openapi turns the request body of an OpenAPI operation into a form
// schema. Documents are parsed with kin-openapi; per-property presentation is
// steered by the x-formkit extension (label, placeholder, rows, widget, order
// and conditionalLogic).
package openapi
