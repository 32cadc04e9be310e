package store

import (
	"slices"

	"github.com/google/uuid"
	"github.com/seventv/SpriteProcessor/src/image"
)

// Store is the ordered collection of loaded images. It is not safe for
// concurrent use; the owner serialises access.
type Store struct {
	items []*image.LoadedImage

	onChange  func()
	onRelease func(img *image.LoadedImage)
}

type Option func(*Store)

// OnChange is called after every mutation.
func OnChange(fn func()) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

// OnRelease is called once for every image whose raster a removal released.
func OnRelease(fn func(img *image.LoadedImage)) Option {
	return func(s *Store) {
		s.onRelease = fn
	}
}

func New(opts ...Option) *Store {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *Store) release(img *image.LoadedImage) {
	if img.Raster.Release() && s.onRelease != nil {
		s.onRelease(img)
	}
}

func (s *Store) indexOf(id uuid.UUID) int {
	for i, img := range s.items {
		if img.ID == id {
			return i
		}
	}

	return -1
}

func (s *Store) Append(img *image.LoadedImage) {
	s.items = append(s.items, img)
	s.changed()
}

// RemoveByID removes and releases the image. It reports whether it was found.
func (s *Store) RemoveByID(id uuid.UUID) bool {
	idx := s.indexOf(id)
	if idx == -1 {
		return false
	}

	img := s.items[idx]
	// Delete clears the vacated tail slot so the image is not kept alive
	s.items = slices.Delete(s.items, idx, idx+1)
	s.release(img)
	s.changed()

	return true
}

// Reorder moves the image with movedID so that it sits directly before the
// image with targetID. It reports whether anything moved.
func (s *Store) Reorder(movedID, targetID uuid.UUID) bool {
	if movedID == targetID {
		return false
	}

	from := s.indexOf(movedID)
	if from == -1 || s.indexOf(targetID) == -1 {
		return false
	}

	moved := s.items[from]
	s.items = slices.Delete(s.items, from, from+1)
	s.items = slices.Insert(s.items, s.indexOf(targetID), moved)

	s.changed()

	return true
}

// Clear removes and releases every image, last first.
func (s *Store) Clear() {
	for len(s.items) > 0 {
		img := s.items[len(s.items)-1]
		s.items[len(s.items)-1] = nil
		s.items = s.items[:len(s.items)-1]
		s.release(img)
	}

	s.changed()
}

func (s *Store) Count() int {
	return len(s.items)
}

func (s *Store) Get(id uuid.UUID) (*image.LoadedImage, bool) {
	idx := s.indexOf(id)
	if idx == -1 {
		return nil, false
	}

	return s.items[idx], true
}

// At returns the image at position i, or nil when out of range.
func (s *Store) At(i int) *image.LoadedImage {
	if i < 0 || i >= len(s.items) {
		return nil
	}

	return s.items[i]
}

// SetOffset updates the horizontal offset of one image.
func (s *Store) SetOffset(id uuid.UUID, offset int) bool {
	img, ok := s.Get(id)
	if !ok {
		return false
	}

	img.OffsetX = offset
	s.changed()

	return true
}

// Items returns a copy of the current order.
func (s *Store) Items() []*image.LoadedImage {
	out := make([]*image.LoadedImage, len(s.items))
	copy(out, s.items)

	return out
}
