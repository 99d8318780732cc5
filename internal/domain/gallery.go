package domain

// Gallery holds the two image selections of the product view. SliderIndex
// drives the narrow-viewport carousel, SelectedThumbnail the wide-viewport
// thumbnail strip. The two are independent of each other.
type Gallery struct {
	SliderIndex       int `json:"slider_index"`
	SelectedThumbnail int `json:"selected_thumbnail"`
}

// Next advances the slider, wrapping from the last image to the first.
func (g *Gallery) Next(size int) {
	if size <= 0 {
		return
	}
	if g.SliderIndex >= size-1 {
		g.SliderIndex = 0
		return
	}
	g.SliderIndex++
}

// Prev moves the slider back, wrapping from the first image to the last.
func (g *Gallery) Prev(size int) {
	if size <= 0 {
		return
	}
	if g.SliderIndex <= 0 {
		g.SliderIndex = size - 1
		return
	}
	g.SliderIndex--
}

func (g *Gallery) Select(index, size int) error {
	if index < 0 || index >= size {
		return ErrInvalidThumbnail
	}
	g.SelectedThumbnail = index
	return nil
}

// Reset returns both selections to the first image, as on a fresh mount of
// the product view.
func (g *Gallery) Reset() {
	g.SliderIndex = 0
	g.SelectedThumbnail = 0
}
