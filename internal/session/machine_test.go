package session

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-studio/internal/analysis"
	"product-studio/internal/geometry"
)

// stubAnalyzer returns a canned result or error, counting calls. When block
// is set, Analyze waits on it so tests can hold a generation in flight.
type stubAnalyzer struct {
	res   analysis.Result
	err   error
	calls atomic.Int32
	block chan struct{}
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ analysis.Image) (analysis.Result, error) {
	s.calls.Add(1)
	if s.block != nil {
		<-s.block
	}
	return s.res, s.err
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func okResult() analysis.Result {
	return analysis.Result{
		Title:            "Ceramic Vase",
		Description:      "A nice vase.",
		Category:         "Home",
		EstimatedPrice:   50,
		Shape:            geometry.ShapeCylinder,
		MaterialAnalysis: "Glazed ceramic",
	}
}

func TestGenerate_RequiresImage(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{res: okResult()}
	m := New(stub, zerolog.Nop(), "s1")

	_, err := m.Generate(context.Background())
	require.ErrorIs(t, err, ErrNoImages)
	// Validation is local; the collaborator is never called.
	assert.Equal(t, int32(0), stub.calls.Load())
	assert.Equal(t, StateEmpty, m.State())
}

func TestGenerate_NonImageUploadRejectedLocally(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{res: okResult()}
	m := New(stub, zerolog.Nop(), "s1")
	require.NoError(t, m.AddImage([]byte("definitely not an image")))

	_, err := m.Generate(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(0), stub.calls.Load())
	assert.Equal(t, StateReadyToGenerate, m.State())
}

func TestStateTransitions_AssetUploads(t *testing.T) {
	t.Parallel()

	m := New(&stubAnalyzer{res: okResult()}, zerolog.Nop(), "s1")
	assert.Equal(t, StateEmpty, m.State())

	require.NoError(t, m.AddImage(pngImage(t)))
	assert.Equal(t, StateReadyToGenerate, m.State())

	require.NoError(t, m.RemoveImage(0))
	assert.Equal(t, StateEmpty, m.State())
}

func TestGenerate_ServiceFailureFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		kind         analysis.ErrorKind
		wantAdvisory string
	}{
		{name: "rate limited", kind: analysis.KindRateLimited, wantAdvisory: "quota"},
		{name: "unconfigured", kind: analysis.KindUnconfigured, wantAdvisory: "not configured"},
		{name: "unavailable", kind: analysis.KindUnavailable, wantAdvisory: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAnalyzer{err: &analysis.ServiceError{Kind: tt.kind, Op: "stub"}}
			m := New(stub, zerolog.Nop(), "s1")
			require.NoError(t, m.AddImage(pngImage(t)))

			draft, err := m.Generate(context.Background())
			require.NoError(t, err, "service failures must not fail generation")
			assert.Equal(t, StateDraftProduced, m.State())

			// Identical structural fallback across all three kinds.
			assert.Equal(t, "New Product", draft.Title)
			assert.Equal(t, float64(0), draft.Price)
			assert.Equal(t, "General", draft.Category)
			require.NotNil(t, draft.ModelData)
			assert.Equal(t, geometry.ShapeBox, draft.ModelData.Shape)
			assert.Equal(t, "Standard material", draft.ModelData.AnalysisText)

			// Distinct human-readable advisory per kind.
			assert.Contains(t, m.Advisory(), tt.wantAdvisory)
		})
	}
}

func TestGenerate_RawErrorStillFallsBack(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{err: context.DeadlineExceeded}
	m := New(stub, zerolog.Nop(), "s1")
	require.NoError(t, m.AddImage(pngImage(t)))

	draft, err := m.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "New Product", draft.Title)
	assert.Contains(t, m.Advisory(), "unavailable")
}

func TestGenerate_CustomMeshOverridesSuggestedShape(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{res: analysis.Result{
		Title: "Thing", Shape: geometry.ShapeSphere, MaterialAnalysis: "Brushed metal",
	}}
	m := New(stub, zerolog.Nop(), "s1")
	require.NoError(t, m.AddImage(pngImage(t)))
	require.NoError(t, m.AttachMesh("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"))

	draft, err := m.Generate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, draft.ModelData)
	assert.Equal(t, geometry.ShapeCustom, draft.ModelData.Shape)
	// The AI analysis text is kept even though its shape was discarded.
	assert.Equal(t, "Brushed metal", draft.ModelData.AnalysisText)
	assert.NotEmpty(t, draft.ModelData.CustomMeshRef)
}

func TestGenerate_UsesSuggestedShapeWithoutMesh(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{res: okResult()}
	m := New(stub, zerolog.Nop(), "s1")
	require.NoError(t, m.AddImage(pngImage(t)))

	draft, err := m.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, geometry.ShapeCylinder, draft.ModelData.Shape)
	assert.Empty(t, m.Advisory())
}

func TestGenerate_SingleInFlight(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{res: okResult(), block: make(chan struct{})}
	m := New(stub, zerolog.Nop(), "s1")
	require.NoError(t, m.AddImage(pngImage(t)))

	done := make(chan error, 1)
	go func() {
		_, err := m.Generate(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return m.State() == StateGenerating
	}, time.Second, 5*time.Millisecond)

	_, err := m.Generate(context.Background())
	assert.ErrorIs(t, err, ErrGenerationInFlight)
	assert.ErrorIs(t, m.AddImage(pngImage(t)), ErrBusy)

	close(stub.block)
	require.NoError(t, <-done)
	assert.Equal(t, StateDraftProduced, m.State())
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestReset_SupersedesInFlightGeneration(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{res: okResult(), block: make(chan struct{})}
	m := New(stub, zerolog.Nop(), "s1")
	require.NoError(t, m.AddImage(pngImage(t)))

	done := make(chan error, 1)
	go func() {
		_, err := m.Generate(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool {
		return m.State() == StateGenerating
	}, time.Second, 5*time.Millisecond)

	m.Reset()
	close(stub.block)

	assert.ErrorIs(t, <-done, ErrGenerationInFlight)
	assert.Nil(t, m.Draft())
	assert.Equal(t, StateReadyToGenerate, m.State())
}

func TestEdit_UpdatesDraftWithoutReanalysis(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{res: okResult()}
	m := New(stub, zerolog.Nop(), "s1")
	require.NoError(t, m.AddImage(pngImage(t)))
	_, err := m.Generate(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.EditTitle("Hand-thrown Vase"))
	require.NoError(t, m.EditDescription("Updated."))
	require.NoError(t, m.EditPrice(75))

	draft := m.Draft()
	assert.Equal(t, "Hand-thrown Vase", draft.Title)
	assert.Equal(t, "Updated.", draft.Description)
	assert.Equal(t, float64(75), draft.Price)
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestEdit_NegativePriceClamped(t *testing.T) {
	t.Parallel()

	m := New(&stubAnalyzer{res: okResult()}, zerolog.Nop(), "s1")
	require.NoError(t, m.AddImage(pngImage(t)))
	_, err := m.Generate(context.Background())
	require.NoError(t, err)

	require.NoError(t, m.EditPrice(-10))
	assert.Equal(t, float64(0), m.Draft().Price)
}

func TestEdit_WithoutDraft(t *testing.T) {
	t.Parallel()

	m := New(&stubAnalyzer{}, zerolog.Nop(), "s1")
	assert.ErrorIs(t, m.EditTitle("x"), ErrNoDraft)
}

func TestPublish_RequiresModelData(t *testing.T) {
	t.Parallel()

	m := New(&stubAnalyzer{}, zerolog.Nop(), "s1")
	_, err := m.Publish()
	assert.ErrorIs(t, err, ErrDraftIncomplete)
}

func TestPublish_RejectedWhileRegenerating(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{res: okResult()}
	m := New(stub, zerolog.Nop(), "s1")
	require.NoError(t, m.AddImage(pngImage(t)))
	_, err := m.Generate(context.Background())
	require.NoError(t, err)

	// Hold a regeneration in flight and try to publish under it.
	stub.block = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := m.Generate(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool {
		return m.State() == StateGenerating
	}, time.Second, 5*time.Millisecond)

	_, err = m.Publish()
	assert.ErrorIs(t, err, ErrBusy)

	close(stub.block)
	require.NoError(t, <-done)
	assert.Equal(t, StateDraftProduced, m.State())

	// With the regeneration settled, publishing proceeds normally.
	p, err := m.Publish()
	require.NoError(t, err)
	assert.Equal(t, StatePublished, m.State())
	assert.Equal(t, "Ceramic Vase", p.Title)
	assert.Nil(t, m.Draft())
}

func TestGenerate_EncodeFailureKeepsProducedDraft(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{res: okResult()}
	m := New(stub, zerolog.Nop(), "s1")
	require.NoError(t, m.AddImage(pngImage(t)))
	draft, err := m.Generate(context.Background())
	require.NoError(t, err)

	// Swap the uploads for a non-image and regenerate; the local failure
	// must leave the produced draft and its state untouched.
	require.NoError(t, m.RemoveImage(0))
	require.NoError(t, m.AddImage([]byte("not an image")))
	_, err = m.Generate(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateDraftProduced, m.State())
	assert.Same(t, draft, m.Draft())
	assert.Equal(t, int32(1), stub.calls.Load())
}

func TestPublish_FreshIdentityAndConsumedDraft(t *testing.T) {
	t.Parallel()

	publish := func() (id string, seller string) {
		m := New(&stubAnalyzer{res: okResult()}, zerolog.Nop(), "seller-9")
		require.NoError(t, m.AddImage(pngImage(t)))
		_, err := m.Generate(context.Background())
		require.NoError(t, err)
		p, err := m.Publish()
		require.NoError(t, err)
		assert.Equal(t, StatePublished, m.State())
		assert.False(t, p.CreatedAt.IsZero())

		// The draft is consumed exactly once.
		assert.Nil(t, m.Draft())
		_, err = m.Publish()
		assert.ErrorIs(t, err, ErrDraftIncomplete)
		return p.ID.String(), p.SellerID
	}

	id1, seller := publish()
	id2, _ := publish()
	assert.NotEqual(t, id1, id2)
	assert.Equal(t, "seller-9", seller)
}

func TestScenario_CylinderDraftToPublishedProduct(t *testing.T) {
	t.Parallel()

	stub := &stubAnalyzer{res: okResult()} // cylinder, price 50
	m := New(stub, zerolog.Nop(), "s1")
	require.NoError(t, m.AddImage(pngImage(t)))

	draft, err := m.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, geometry.ShapeCylinder, draft.ModelData.Shape)
	assert.Equal(t, float64(50), draft.Price)
	require.Len(t, draft.Images, 1)
	assert.Equal(t, draft.Images[0], draft.ModelData.TextureRef)

	p, err := m.Publish()
	require.NoError(t, err)
	assert.Equal(t, geometry.ShapeCylinder, p.ModelData.Shape)
	assert.Equal(t, float64(50), p.Price)
	assert.Equal(t, "Ceramic Vase", p.Title)
}
