// Package question holds the generation providers that turn a quiz subject
// into raw model output. Providers return the model's text verbatim; cleaning
// and parsing belong to the sanitize package.
package question

import "context"

// Generator produces raw model text for a batch of multiple-choice questions.
type Generator interface {
	// Generate requests count questions about the subject and returns the
	// textual payload of the model response.
	Generate(ctx context.Context, subject string, count int) (string, error)
	// Name identifies the provider in logs and metrics.
	Name() string
}
