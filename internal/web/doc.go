// Package web serves the landing page over HTTP.
//
// Routes:
//
//	GET  /                 landing page in the resolved theme
//	POST /theme            flip the theme cookie and redirect to /
//	POST /signup           form submission, re-renders the page
//	POST /api/signup       JSON submission
//	GET  /healthz          liveness
//	GET  /{dark,light}-logo.png
//
// The theme resolves from the "theme" cookie, falling back to the
// Sec-CH-Prefers-Color-Scheme client hint.
package web
