// Package session drives the seller workflow: collect uploaded assets, run
// AI analysis on the first image, merge the result (or a fallback) into an
// editable draft, and finalize it into an immutable Product.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog"

	"product-studio/internal/analysis"
	"product-studio/internal/assets"
	"product-studio/internal/catalog"
	"product-studio/internal/geometry"
)

// State is the workflow position of one generation session.
type State int

const (
	StateEmpty State = iota
	StateReadyToGenerate
	StateGenerating
	StateDraftProduced
	StatePublishing
	StatePublished
)

// String returns a short name for logging.
func (s State) String() string {
	switch s {
	case StateReadyToGenerate:
		return "ready"
	case StateGenerating:
		return "generating"
	case StateDraftProduced:
		return "draft_produced"
	case StatePublishing:
		return "publishing"
	case StatePublished:
		return "published"
	default:
		return "empty"
	}
}

var (
	// ErrNoImages is the local validation failure for generating without any
	// uploaded image. It is rejected before the collaborator is called.
	ErrNoImages = errors.New("session: at least one product image is required")
	// ErrGenerationInFlight means Generate was called while a previous
	// generation for this session is still running.
	ErrGenerationInFlight = errors.New("session: a generation is already in flight")
	// ErrBusy means an asset mutation was attempted mid-generation.
	ErrBusy = errors.New("session: session is busy generating")
	// ErrNoDraft means an edit was attempted before any draft exists.
	ErrNoDraft = errors.New("session: no draft to edit")
	// ErrDraftIncomplete is the publish precondition violation: the draft
	// carries no model data.
	ErrDraftIncomplete = errors.New("session: draft has no model data")
)

// Machine is one seller's generation session. It owns the current draft
// exclusively; at most one generation runs at a time, and an abandoned
// in-flight generation (via Reset) has its result dropped on completion.
type Machine struct {
	analyzer analysis.Analyzer
	log      zerolog.Logger
	sellerID string

	mu       sync.Mutex
	seq      uint64 // bumped by Reset; in-flight results with an older seq are dropped
	state    State
	images   [][]byte
	meshOBJ  string
	draft    *catalog.ProductDraft
	advisory string
}

// New returns an empty session for the given seller.
func New(analyzer analysis.Analyzer, log zerolog.Logger, sellerID string) *Machine {
	return &Machine{
		analyzer: analyzer,
		log:      log.With().Str("seller", sellerID).Logger(),
		sellerID: sellerID,
		state:    StateEmpty,
	}
}

// State returns the current workflow state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Advisory returns the non-fatal message from the last generation (empty when
// the collaborator succeeded). It never blocks the workflow.
func (m *Machine) Advisory() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advisory
}

// Draft returns the session's current draft, or nil before the first
// generation completes. The caller may mutate it only through the Edit
// methods.
func (m *Machine) Draft() *catalog.ProductDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// AddImage appends one uploaded image (raw bytes). The first image moves the
// session from Empty to ReadyToGenerate.
func (m *Machine) AddImage(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateGenerating {
		return ErrBusy
	}
	m.images = append(m.images, data)
	if m.state == StateEmpty {
		m.state = StateReadyToGenerate
	}
	return nil
}

// RemoveImage drops the image at index i. Removing the last image returns the
// session to Empty.
func (m *Machine) RemoveImage(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateGenerating {
		return ErrBusy
	}
	if i < 0 || i >= len(m.images) {
		return errors.New("session: image index out of range")
	}
	m.images = append(m.images[:i], m.images[i+1:]...)
	if len(m.images) == 0 && m.state == StateReadyToGenerate {
		m.state = StateEmpty
	}
	return nil
}

// AttachMesh sets the optional custom mesh (OBJ source text). When present,
// the generated draft's shape is forced to custom, whatever the AI suggests.
func (m *Machine) AttachMesh(objSource string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateGenerating {
		return ErrBusy
	}
	m.meshOBJ = objSource
	return nil
}

// DetachMesh clears the optional custom mesh.
func (m *Machine) DetachMesh() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateGenerating {
		return ErrBusy
	}
	m.meshOBJ = ""
	return nil
}

// Reset abandons the session back to its asset state: any in-flight
// generation is superseded (its result will be dropped when it completes) and
// any produced draft is discarded. Uploaded assets are kept.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.draft = nil
	m.advisory = ""
	if len(m.images) > 0 {
		m.state = StateReadyToGenerate
	} else {
		m.state = StateEmpty
	}
}

// Generate encodes the first image, calls the analysis collaborator, and
// produces the editable draft. Collaborator failures never fail the call:
// they produce a structurally identical fallback draft plus an advisory
// message. The only errors are local validation (no image, first upload not
// an image) and the in-flight guard.
func (m *Machine) Generate(ctx context.Context) (*catalog.ProductDraft, error) {
	m.mu.Lock()
	if m.state == StateGenerating {
		m.mu.Unlock()
		return nil, ErrGenerationInFlight
	}
	if len(m.images) == 0 {
		m.mu.Unlock()
		return nil, ErrNoImages
	}
	first := m.images[0]
	all := make([][]byte, len(m.images))
	copy(all, m.images)
	meshOBJ := m.meshOBJ
	seq := m.seq
	prev := m.state
	m.state = StateGenerating
	m.advisory = ""
	m.mu.Unlock()

	encoded, mimeType, err := assets.EncodeImage(first)
	if err != nil {
		// Local validation failure; the session keeps whatever it had
		// (including a previously produced draft).
		m.settle(seq, prev, nil, "")
		return nil, err
	}

	m.log.Info().Str("mime", mimeType).Int("images", len(all)).Msg("requesting AI analysis")
	res, err := m.analyzer.Analyze(ctx, analysis.Image{Data: encoded, MIMEType: mimeType})
	advisory := ""
	if err != nil {
		kind := analysis.Classify(err)
		res = fallbackResult(kind)
		advisory = res.Description
		m.log.Warn().Err(err).Stringer("kind", kind).Msg("AI analysis failed, using fallback draft")
	}

	textureRef := assets.DataURI(mimeType, encoded)
	md := catalog.NewModelData(res.Shape, textureRef, res.MaterialAnalysis, meshOBJ)
	images := make([]string, 0, len(all))
	for _, raw := range all {
		if enc, mt, encErr := assets.EncodeImage(raw); encErr == nil {
			images = append(images, assets.DataURI(mt, enc))
		}
	}
	draft := &catalog.ProductDraft{
		Title:       res.Title,
		Description: res.Description,
		Price:       res.EstimatedPrice,
		Category:    res.Category,
		Images:      images,
		ModelData:   &md,
	}

	if !m.settle(seq, StateDraftProduced, draft, advisory) {
		// Session was reset mid-generation; drop the result.
		m.log.Debug().Msg("superseded generation result dropped")
		return nil, ErrGenerationInFlight
	}
	return draft, nil
}

// settle applies the outcome of a generation pass if the session was not
// reset while it ran. Returns false when the result was superseded.
func (m *Machine) settle(seq uint64, state State, draft *catalog.ProductDraft, advisory string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.seq {
		return false
	}
	m.state = state
	if draft != nil {
		m.draft = draft
	}
	m.advisory = advisory
	return true
}

// EditTitle updates the draft title in place without re-invoking analysis.
func (m *Machine) EditTitle(title string) error {
	return m.edit(func(d *catalog.ProductDraft) { d.Title = title })
}

// EditDescription updates the draft description in place.
func (m *Machine) EditDescription(desc string) error {
	return m.edit(func(d *catalog.ProductDraft) { d.Description = desc })
}

// EditPrice updates the draft price in place. Negative prices are clamped
// to zero.
func (m *Machine) EditPrice(price float64) error {
	if price < 0 {
		price = 0
	}
	return m.edit(func(d *catalog.ProductDraft) { d.Price = price })
}

func (m *Machine) edit(apply func(*catalog.ProductDraft)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil {
		return ErrNoDraft
	}
	apply(m.draft)
	return nil
}

// Publish finalizes the current draft into an immutable Product with a fresh
// identity and creation timestamp, consuming the draft. Publishing a draft
// without model data is a contract violation and is rejected, and publishing
// while a regeneration is in flight is refused so a late-settling result can
// never reopen a finalized session.
func (m *Machine) Publish() (catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateGenerating {
		return catalog.Product{}, ErrBusy
	}
	if m.draft == nil || m.draft.ModelData == nil {
		return catalog.Product{}, ErrDraftIncomplete
	}
	m.state = StatePublishing

	var p catalog.Product
	if err := copier.Copy(&p, m.draft); err != nil {
		m.state = StateDraftProduced
		return catalog.Product{}, err
	}
	p.ID = uuid.New()
	p.SellerID = m.sellerID
	p.ModelData = *m.draft.ModelData
	p.CreatedAt = time.Now()

	m.draft = nil
	m.state = StatePublished
	m.log.Info().Str("product", p.ID.String()).Str("title", p.Title).Msg("product published")
	return p, nil
}

// fallbackResult is the structurally fixed draft used when the collaborator
// fails: box shape, zero price, General category, standard material. Only the
// description varies by failure kind so the seller knows what happened.
func fallbackResult(kind analysis.ErrorKind) analysis.Result {
	desc := "Automated description unavailable. Please enter details manually."
	switch kind {
	case analysis.KindRateLimited:
		desc = "AI quota exceeded. Please enter product details manually."
	case analysis.KindUnconfigured:
		desc = "AI service is not configured. Please enter product details manually."
	}
	return analysis.Result{
		Title:            "New Product",
		Description:      desc,
		Category:         "General",
		EstimatedPrice:   0,
		Shape:            geometry.ShapeBox,
		MaterialAnalysis: "Standard material",
	}
}
