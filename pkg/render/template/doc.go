// Package template wraps a pongo2 template set behind the TemplateRenderer
// contract used by the HTML renderer.
package template
