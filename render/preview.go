package render

import (
	"sync"

	"whosoever-apparel/logger"
)

// Surface is the measured drawing area a preview is mounted on.
// Resize notifies every registered listener after the size is updated.
type Surface struct {
	mu        sync.Mutex
	width     int
	height    int
	mounted   bool
	nextID    int
	listeners map[int]func(width, height int)
}

func NewSurface() *Surface {
	return &Surface{listeners: make(map[int]func(int, int))}
}

// Mount marks the surface as laid out with the given size
func (s *Surface) Mount(width, height int) {
	s.mu.Lock()
	s.mounted = true
	s.mu.Unlock()
	s.Resize(width, height)
}

// Unmount marks the surface as gone. Listeners stay registered until their owner removes them.
func (s *Surface) Unmount() {
	s.mu.Lock()
	s.mounted = false
	s.mu.Unlock()
}

// Resize records a new measured size. Negative sizes are treated as zero.
func (s *Surface) Resize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	s.mu.Lock()
	changed := width != s.width || height != s.height
	s.width, s.height = width, height
	var fns []func(int, int)
	if changed {
		for _, fn := range s.listeners {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(width, height)
	}
}

func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Surface) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// OnResize registers fn and returns the function that removes it
func (s *Surface) OnResize(fn func(width, height int)) (remove func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Surface) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Preview keeps a composed scene in sync with its input and the surface size.
// It holds exactly one resize listener while attached.
type Preview struct {
	mu       sync.Mutex
	composer *Composer
	log      *logger.Logger
	surface  *Surface
	detach   func()
	input    Input
	scene    *Scene
	err      error
}

func NewPreview(composer *Composer, log *logger.Logger) *Preview {
	if log == nil {
		log = logger.Nop()
	}
	return &Preview{composer: composer, log: log.With("service", "Preview")}
}

// Attach mounts the preview on surface, replacing any previous attachment
func (p *Preview) Attach(surface *Surface) {
	p.Detach()

	p.mu.Lock()
	p.surface = surface
	p.mu.Unlock()

	remove := surface.OnResize(func(width, height int) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.recompose(width, height)
	})

	p.mu.Lock()
	p.detach = remove
	w, h := surface.Size()
	p.recompose(w, h)
	p.mu.Unlock()
}

// Detach removes the resize listener. Safe to call when not attached.
func (p *Preview) Detach() {
	p.mu.Lock()
	remove := p.detach
	p.detach = nil
	p.surface = nil
	p.mu.Unlock()

	if remove != nil {
		remove()
	}
}

// Update replaces the input and recomposes at the current surface size
func (p *Preview) Update(in Input) (*Scene, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.input = in
	w, h := 0, 0
	if p.surface != nil {
		w, h = p.surface.Size()
	}
	p.recompose(w, h)
	return p.scene, p.err
}

// Scene returns the last composed scene
func (p *Preview) Scene() (*Scene, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scene, p.err
}

func (p *Preview) recompose(width, height int) {
	scene, err := p.composer.Compose(p.input, width, height)
	if err != nil {
		p.log.Error("❌ Failed to compose preview", "error", err)
		p.err = err
		return
	}
	p.scene, p.err = scene, nil
}
