// Package signup models the one-field "notify me" form and its submission
// lifecycle: idle, submitting, then success or error.
package signup
