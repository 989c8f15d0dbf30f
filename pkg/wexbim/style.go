package wexbim

// Sentinel style ids. Both entries are appended to every palette after the
// file's own styles have been read.
const (
	// StyleUnknown resolves any style id the file never defined.
	StyleUnknown int32 = -1
	// StyleOpening is forced onto shapes whose product is an opening or a
	// space, regardless of the style id stored in the file.
	StyleOpening int32 = -2
)

// transparencyCutoff is the unnormalized alpha below which a style renders
// transparent.
const transparencyCutoff = float32(254) / 255

// Style is one entry of the material palette.
type Style struct {
	ID    int32
	Index int
	RGBA  [4]float32
	// Derived from alpha.
	Transparent bool
	Opacity     float32
}

func newStyle(id int32, index int, rgba [4]float32) Style {
	return Style{
		ID:          id,
		Index:       index,
		RGBA:        rgba,
		Transparent: rgba[3] < transparencyCutoff,
		Opacity:     rgba[3],
	}
}

// StyleTable is a dense palette of styles plus a sparse map from external
// style id to palette index. Lookups are total: ids absent from the file
// resolve to the StyleUnknown sentinel.
type StyleTable struct {
	styles []Style
	byID   map[int32]int
}

func newStyleTable(capacity int) *StyleTable {
	return &StyleTable{
		styles: make([]Style, 0, capacity+2),
		byID:   make(map[int32]int, capacity+2),
	}
}

func (t *StyleTable) add(id int32, rgba [4]float32) {
	// First definition of an id wins.
	if _, ok := t.byID[id]; ok {
		return
	}
	s := newStyle(id, len(t.styles), rgba)
	t.byID[id] = s.Index
	t.styles = append(t.styles, s)
}

// addSentinels appends the StyleUnknown and StyleOpening entries.
func (t *StyleTable) addSentinels() {
	t.add(StyleUnknown, [4]float32{0.47, 0.47, 0.47, 1})
	t.add(StyleOpening, [4]float32{0.55, 0.55, 0.55, 0.3})
}

// Len returns the number of palette entries, sentinels included.
func (t *StyleTable) Len() int { return len(t.styles) }

// At returns the palette entry at a dense index.
func (t *StyleTable) At(index int) Style { return t.styles[index] }

// Lookup resolves a style id to its palette entry, falling back to the
// StyleUnknown sentinel for ids the file never defined.
func (t *StyleTable) Lookup(id int32) Style {
	if idx, ok := t.byID[id]; ok {
		return t.styles[idx]
	}
	return t.styles[t.byID[StyleUnknown]]
}

// Resolve computes the effective style for a shape: openings and spaces are
// forced onto the StyleOpening sentinel, unknown ids fall back to
// StyleUnknown, everything else resolves as stored.
func (t *StyleTable) Resolve(productType int16, styleID int32) Style {
	if productType == ProductTypeOpening || productType == ProductTypeSpace {
		return t.Lookup(StyleOpening)
	}
	return t.Lookup(styleID)
}
