package analysis

import "context"

// Fallback tries Primary first; if it fails, tries Secondary. Use when the
// preferred backend may be unconfigured or over quota but a second provider
// is available. A rate-limited primary still falls through, since a different
// provider has its own quota.
type Fallback struct {
	Primary   Analyzer
	Secondary Analyzer
}

// Analyze calls Primary.Analyze; on any error, calls Secondary.Analyze.
// With no Secondary the primary error is returned as-is.
func (f *Fallback) Analyze(ctx context.Context, img Image) (Result, error) {
	res, err := f.Primary.Analyze(ctx, img)
	if err != nil && f.Secondary != nil {
		return f.Secondary.Analyze(ctx, img)
	}
	return res, err
}
