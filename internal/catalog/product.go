package catalog

import (
	"time"

	"github.com/google/uuid"

	"product-studio/internal/geometry"
)

// ModelData is everything the viewer needs to present a product in 3D. It is
// produced once by a generation session and handed to the viewer by value.
type ModelData struct {
	Shape         geometry.Shape
	TextureRef    string // data URI or URL, usually the first product image
	AnalysisText  string // AI material/structure analysis, advisory only
	CustomMeshRef string // OBJ source text; non-empty only for custom shape
	GeneratedAt   time.Time
}

// NewModelData builds ModelData, enforcing that a custom mesh forces the
// custom shape regardless of what shape the caller suggests.
func NewModelData(shape geometry.Shape, textureRef, analysisText, customMeshRef string) ModelData {
	if customMeshRef != "" {
		shape = geometry.ShapeCustom
	}
	return ModelData{
		Shape:         shape,
		TextureRef:    textureRef,
		AnalysisText:  analysisText,
		CustomMeshRef: customMeshRef,
		GeneratedAt:   time.Now(),
	}
}

// ProductDraft is the mutable, unpublished product record owned by a seller's
// generation session. ModelData is nil until a generation pass has run; a
// draft is consumed exactly once by publishing.
type ProductDraft struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Images      []string // data URIs
	ModelData   *ModelData
}

// Product is the immutable, finalized form of a draft. Once published it is
// append-only in the catalog; nothing in this package mutates one.
type Product struct {
	ID          uuid.UUID
	SellerID    string
	Title       string
	Description string
	Price       float64
	Category    string
	Images      []string
	ModelData   ModelData
	CreatedAt   time.Time
}
