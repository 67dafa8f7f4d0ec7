package views

import (
	"math"

	"debate-gallery/internal/domain/imagepath"
)

// Rect is a horizontal bounding box in viewport coordinates
type Rect struct {
	Left  float64 `json:"left"`
	Width float64 `json:"width"`
}

// Slide is one image of a carousel strip
type Slide struct {
	Index int               `json:"index"`
	Image imagepath.Binding `json:"image"`
}

// Dot is the indicator paired with a slide
type Dot struct {
	Index  int  `json:"index"`
	Active bool `json:"active"`
}

// Carousel is a horizontally scrolling strip of images with one indicator
// dot per image. At most one dot is active.
type Carousel struct {
	Caption string  `json:"caption"`
	Slides  []Slide `json:"slides"`
	Dots    []Dot   `json:"dots"`
}

// Mount builds a carousel for images. The first dot starts active; an empty
// image list yields an empty strip without dots.
func Mount(images []imagepath.Binding, caption string) *Carousel {
	c := &Carousel{
		Caption: caption,
		Slides:  make([]Slide, 0, len(images)),
		Dots:    make([]Dot, 0, len(images)),
	}
	for i, img := range images {
		c.Slides = append(c.Slides, Slide{Index: i, Image: img})
		c.Dots = append(c.Dots, Dot{Index: i, Active: i == 0})
	}
	return c
}

// Empty reports whether the strip has no images
func (c *Carousel) Empty() bool {
	return len(c.Slides) == 0
}

// Multiple reports whether navigation dots are worth rendering
func (c *Carousel) Multiple() bool {
	return len(c.Slides) > 1
}

// Active returns the index of the active dot, or -1
func (c *Carousel) Active() int {
	for _, d := range c.Dots {
		if d.Active {
			return d.Index
		}
	}
	return -1
}

// Activate marks dot i active and every other inactive.
// Out of range indices leave the carousel unchanged.
func (c *Carousel) Activate(i int) {
	if i < 0 || i >= len(c.Dots) {
		return
	}
	for j := range c.Dots {
		c.Dots[j].Active = j == i
	}
}

// OnScroll activates the dot of the slide closest to scrollLeft
func (c *Carousel) OnScroll(scrollLeft float64, offsets []float64) {
	c.Activate(ClosestIndex(scrollLeft, offsets))
}

// CenterScrollLeft returns the strip scroll offset that horizontally centers
// img inside strip, given the strip's current offset. Works for slides of
// varying width.
func CenterScrollLeft(current float64, img, strip Rect) float64 {
	return current + (img.Left - strip.Left) - (strip.Width-img.Width)/2
}

// ClosestIndex returns the index of the offset nearest to scrollLeft.
// Ties go to the first index; an empty list gives -1.
func ClosestIndex(scrollLeft float64, offsets []float64) int {
	best := -1
	bestDiff := math.Inf(1)
	for i, off := range offsets {
		if d := math.Abs(off - scrollLeft); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}
