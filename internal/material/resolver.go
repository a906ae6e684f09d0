package material

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/rs/zerolog"
)

// State is the resolver's slot state. One resolver owns one logical slot
// (e.g. the texture of the product currently on screen).
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

// String returns a short name for logging.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// FallbackColor is the fixed neutral flat color used whenever no texture is
// available (no reference, decode failure, network failure).
var FallbackColor = color.NRGBA{R: 0xe2, G: 0xe8, B: 0xf0, A: 0xff}

// Material is what the viewer draws with: a decoded texture, or the flat
// fallback color when Texture is nil. Never both.
type Material struct {
	Texture image.Image
	Flat    color.NRGBA
}

// Textured reports whether the material carries a real texture.
func (m Material) Textured() bool { return m.Texture != nil }

// Fallback returns the flat-color fallback material.
func Fallback() Material { return Material{Flat: FallbackColor} }

// Snapshot is the resolver's observable state at one point in time. Token
// identifies which Resolve call the material belongs to.
type Snapshot struct {
	State    State
	Token    uint64
	Material Material
}

// Resolver loads textures asynchronously for a single slot. Each Resolve call
// gets a new monotonically increasing token; when a load finishes, its result
// is applied only if its token is still the current one, so the most recently
// issued request always wins regardless of completion order.
type Resolver struct {
	loader ImageLoader
	log    zerolog.Logger

	mu       sync.Mutex
	token    uint64
	state    State
	material Material

	updates chan struct{}
}

// NewResolver returns an idle resolver holding the fallback material.
func NewResolver(loader ImageLoader, log zerolog.Logger) *Resolver {
	return &Resolver{
		loader:   loader,
		log:      log,
		state:    StateIdle,
		material: Fallback(),
		updates:  make(chan struct{}, 1),
	}
}

// Resolve starts loading ref and returns the request token. An empty ref
// settles the slot immediately on the fallback material. Any in-flight load
// from an earlier call is superseded: its eventual result is dropped.
func (r *Resolver) Resolve(ctx context.Context, ref string) uint64 {
	r.mu.Lock()
	r.token++
	token := r.token
	if ref == "" {
		r.state = StateIdle
		r.material = Fallback()
		r.mu.Unlock()
		r.notify()
		return token
	}
	r.state = StateLoading
	r.mu.Unlock()
	r.notify()

	go r.load(ctx, token, ref)
	return token
}

func (r *Resolver) load(ctx context.Context, token uint64, ref string) {
	img, err := r.loader.Load(ctx, ref)

	r.mu.Lock()
	if token != r.token {
		// Superseded while loading; drop the result.
		r.mu.Unlock()
		r.log.Debug().Uint64("token", token).Msg("stale texture result dropped")
		return
	}
	if err != nil {
		r.state = StateFailed
		r.material = Fallback()
		r.mu.Unlock()
		r.log.Warn().Err(err).Str("ref", truncateRef(ref)).Msg("texture load failed, using flat fallback")
		r.notify()
		return
	}
	r.state = StateLoaded
	r.material = Material{Texture: img}
	r.mu.Unlock()
	r.notify()
}

// Snapshot returns the current slot state and material.
func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{State: r.state, Token: r.token, Material: r.material}
}

// Updates signals (coalesced) whenever the snapshot changes; consumers poll
// Snapshot after a signal. The channel never blocks the resolver.
func (r *Resolver) Updates() <-chan struct{} {
	return r.updates
}

func (r *Resolver) notify() {
	select {
	case r.updates <- struct{}{}:
	default:
	}
}

// truncateRef keeps data-URI log lines readable.
func truncateRef(ref string) string {
	const max = 64
	if len(ref) > max {
		return ref[:max] + "..."
	}
	return ref
}
