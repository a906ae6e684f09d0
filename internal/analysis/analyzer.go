// Package analysis talks to the AI image-analysis collaborator that turns a
// product photo into draft metadata and a suggested primitive shape.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"product-studio/internal/geometry"
)

// Image is one encoded product photo: base64 payload plus its MIME type.
type Image struct {
	Data     string // base64, no data-URI prefix
	MIMEType string
}

// Result is the structured analysis of a product image. Shape is one of the
// primitive shapes; the workflow may still override it with custom when the
// seller uploaded a mesh.
type Result struct {
	Title            string
	Description      string
	Category         string
	EstimatedPrice   float64
	Shape            geometry.Shape
	MaterialAnalysis string
}

// Analyzer sends an encoded product image to an analysis backend and returns
// the structured result. Failures are always a *ServiceError.
type Analyzer interface {
	Analyze(ctx context.Context, img Image) (Result, error)
}

// ErrorKind classifies collaborator failures into the three cases the
// generation workflow recovers from.
type ErrorKind int

const (
	// KindUnavailable covers network failures, server errors, and anything
	// else without a more specific classification.
	KindUnavailable ErrorKind = iota
	// KindRateLimited is quota or rate-limit exhaustion (HTTP 429).
	KindRateLimited
	// KindUnconfigured means the service credential is missing or rejected.
	KindUnconfigured
)

// String returns a short name for logging.
func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUnconfigured:
		return "unconfigured"
	default:
		return "unavailable"
	}
}

// ServiceError is a classified collaborator failure.
type ServiceError struct {
	Kind ErrorKind
	Op   string // which backend failed, e.g. "gemini"
	Err  error  // underlying cause, may be nil
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("analysis: %s: %s", e.Op, e.Kind)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Classify extracts the failure kind from an analyzer error. Anything that is
// not a ServiceError counts as generic unavailability.
func Classify(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnavailable
}

// wireResult is the JSON shape the backends return (shape as a string).
type wireResult struct {
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Category         string  `json:"category"`
	EstimatedPrice   float64 `json:"estimatedPrice"`
	Shape            string  `json:"shape"`
	MaterialAnalysis string  `json:"materialAnalysis"`
}

// sanitize converts a wire result into a Result, repairing out-of-contract
// values instead of failing: unknown shapes become box, negative prices 0.
func sanitize(w wireResult) Result {
	shape, err := geometry.ParseShape(w.Shape)
	if err != nil || shape == geometry.ShapeCustom {
		shape = geometry.ShapeBox
	}
	price := w.EstimatedPrice
	if price < 0 {
		price = 0
	}
	return Result{
		Title:            w.Title,
		Description:      w.Description,
		Category:         w.Category,
		EstimatedPrice:   price,
		Shape:            shape,
		MaterialAnalysis: w.MaterialAnalysis,
	}
}
