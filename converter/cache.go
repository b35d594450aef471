package converter

import (
	"reflect"
	"sync"

	"github.com/zoobzio/shapepack/shape"
)

// cacheKey is (shape identity, layout-affecting config) per spec §3. The
// shape pointer itself stands in for "shape identity, shape provider
// identity": shape.OfType already caches by reflect.Type, so two shapes
// for the same Go type are the same *shape.Shape pointer.
type cacheKey struct {
	shape      *shape.Shape
	layoutFlag uint64
}

// cell is the tie-the-knot handle published before composition finishes:
// readers observe either the placeholder cell (itself a valid Converter,
// since it forwards to whatever is eventually installed) or the
// completed converter (spec §4.1).
type cell struct {
	mu   sync.RWMutex
	done bool
	conv Converter
}

func (c *cell) install(conv Converter) {
	c.mu.Lock()
	c.conv = conv
	c.done = true
	c.mu.Unlock()
}

func (c *cell) get() (Converter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conv, c.done
}

// Read implements Converter by forwarding to the installed converter.
// Called only when a cycle in the shape graph causes recursion to hit
// this placeholder before composition of the outer shape has finished;
// by the time any value actually reaches Read/Write, composition of the
// whole cyclic group has completed because composition itself does not
// read or write values.
func (c *cell) Read(r *Reader, ctx *Context) (reflect.Value, error) {
	conv, _ := c.get()
	return conv.Read(r, ctx)
}

func (c *cell) Write(w *Writer, v reflect.Value, ctx *Context) error {
	conv, _ := c.get()
	return conv.Write(w, v, ctx)
}

func (c *cell) CanBeReferencePreserved() bool {
	conv, done := c.get()
	if !done {
		return true
	}
	return conv.CanBeReferencePreserved()
}

// Cache maps shapes to their composed converters, per spec §4.1/§3. It is
// owned by exactly one Config value; reconfiguration that changes a
// layout-affecting flag gets a fresh Cache rather than mutating this one
// in place (spec "Reconfiguration reset").
type Cache struct {
	mu      sync.RWMutex
	cells   map[cacheKey]*cell
	kernel  *Kernel
	layout  uint64
}

func newCache(k *Kernel, layout uint64) *Cache {
	return &Cache{cells: make(map[cacheKey]*cell), kernel: k, layout: layout}
}

// getOrCreate returns the cell for key, publishing a fresh placeholder
// cell if none exists yet. The second return reports whether the caller
// (Kernel.Get) must perform composition, vs. an existing cell already
// being composed or complete by someone else.
func (c *Cache) getOrCreate(s *shape.Shape) (*cell, bool) {
	key := cacheKey{shape: s, layoutFlag: c.layout}

	c.mu.RLock()
	existing, ok := c.cells[key]
	c.mu.RUnlock()
	if ok {
		return existing, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.cells[key]; ok {
		return existing, false
	}
	cl := &cell{}
	c.cells[key] = cl
	return cl, true
}
