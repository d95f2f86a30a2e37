// Package templates renders the demo's HTML pages.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

const appName = "EduSync"

type navLink struct {
	href  string
	label string
}

var navLinks = []navLink{
	{"/", "Overview"},
	{"/sources", "Connect Sources"},
	{"/analysis", "AI Analysis"},
	{"/cleaning", "Data Cleaning"},
	{"/reconciliation", "Reconciliation"},
	{"/exports", "Export Data"},
	{"/completion", "Evidence Pack"},
}

// Layout wraps a page body in the shared document shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s | %s</title></head><body><header><h1>%s</h1><nav>`,
			templ.EscapeString(title), appName, appName); err != nil {
			return err
		}
		for _, link := range navLinks {
			if _, err := fmt.Fprintf(w, `<a href="%s">%s</a> `, link.href, templ.EscapeString(link.label)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `</nav></header><main><h2>%s</h2>`, templ.EscapeString(title)); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</main></body></html>")
		return err
	})
}

// component adapts a render func to templ.Component.
func component(render func(ctx context.Context, w io.Writer) error) templ.Component {
	return templ.ComponentFunc(render)
}

// pending renders the placeholder shown before a step has run.
func pending(message string) templ.Component {
	return component(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<p class="pending">%s</p>`, templ.EscapeString(message))
		return err
	})
}

// esc shortens the escape call in render bodies.
func esc(s string) string {
	return templ.EscapeString(s)
}
