package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"k8s.io/utils/set"
)

// Anchor is the normalized point of an element that its x/y
// coordinates refer to. Both components are in [0, 1]; {0.5, 0.5} is
// the center of the element.
type Anchor struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// CenterAnchor returns the default centered anchor.
func CenterAnchor() Anchor { return Anchor{Top: 0.5, Left: 0.5} }

// ScaleRate controls how an element scales as the viewport zooms.
type ScaleRate string

const (
	ScaleRateNone ScaleRate = "none"
	ScaleRateBase ScaleRate = "base"
)

// Valid reports whether the scale rate is a known value.
func (s ScaleRate) Valid() bool { return s == ScaleRateNone || s == ScaleRateBase }

// TextAlign is the horizontal alignment of a text element.
type TextAlign string

const (
	TextAlignLeft    TextAlign = "left"
	TextAlignCenter  TextAlign = "center"
	TextAlignRight   TextAlign = "right"
	TextAlignJustify TextAlign = "justify"
)

// Valid reports whether the alignment is a known value.
func (t TextAlign) Valid() bool {
	switch t {
	case TextAlignLeft, TextAlignCenter, TextAlignRight, TextAlignJustify:
		return true
	}
	return false
}

// FontType selects the font family group of a text element.
type FontType string

const (
	FontTypeSans  FontType = "sans"
	FontTypeSerif FontType = "serif"
	FontTypeMono  FontType = "mono"
)

// Valid reports whether the font type is a known value.
func (f FontType) Valid() bool {
	return f == FontTypeSans || f == FontTypeSerif || f == FontTypeMono
}

// TextFont describes the font of a text element. CustomFontFamily is
// null unless the client supplies an explicit family name.
type TextFont struct {
	FontType         FontType `json:"font_type"`
	CustomFontFamily *string  `json:"custom_font_family"`
}

// TextElement is the payload of a text element. It always serializes
// with its "type" tag so the same shape serves both the element body
// and the text overlays embedded in image elements.
type TextElement struct {
	Content         string    `json:"content"`
	Align           TextAlign `json:"align"`
	Color           Color     `json:"color"`
	Size            float64   `json:"size"`
	Font            TextFont  `json:"font"`
	BackgroundColor Color     `json:"background_color"`
	BackgroundBlur  float64   `json:"background_blur"`
}

// MarshalJSON emits the payload with its "type":"text" tag.
func (t TextElement) MarshalJSON() ([]byte, error) {
	type plain TextElement
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{Type: "text", plain: plain(t)})
}

func (t *TextElement) validate() error {
	if !t.Align.Valid() {
		return fmt.Errorf("invalid text alignment %q", t.Align)
	}
	if t.Color == "" {
		return fmt.Errorf("text is missing a color")
	}
	if !t.Font.FontType.Valid() {
		return fmt.Errorf("invalid font type %q", t.Font.FontType)
	}
	if t.BackgroundColor == "" {
		return fmt.Errorf("text is missing a background color")
	}
	return nil
}

// ImageCrop is the fraction of the image cropped away from each edge.
type ImageCrop struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// ImageText is a text overlay positioned relative to its image.
type ImageText struct {
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Anchor Anchor      `json:"anchor"`
	Text   TextElement `json:"text"`
}

// ImageElement is the payload of an image element.
type ImageElement struct {
	URL              string      `json:"url"`
	Alt              string      `json:"alt"`
	ScaleX           float64     `json:"scale_x"`
	ScaleY           float64     `json:"scale_y"`
	Crop             ImageCrop   `json:"crop"`
	OutlineColor     Color       `json:"outline_color"`
	OutlineThickness float64     `json:"outline_thickness"`
	OutlineBlur      float64     `json:"outline_blur"`
	Text             []ImageText `json:"text"`
}

// MarshalJSON emits the payload with its "type":"image" tag.
func (i ImageElement) MarshalJSON() ([]byte, error) {
	type plain ImageElement
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{Type: "image", plain: plain(i)})
}

func (i *ImageElement) validate() error {
	if i.OutlineColor == "" {
		return fmt.Errorf("image is missing an outline color")
	}
	if i.Text == nil {
		i.Text = []ImageText{}
	}
	for idx := range i.Text {
		if err := i.Text[idx].Text.validate(); err != nil {
			return fmt.Errorf("image text %d: %w", idx, err)
		}
	}
	return nil
}

// ElementType is the tagged body of an element. Exactly one variant is
// set at a time.
type ElementType struct {
	Text  *TextElement
	Image *ImageElement
}

// MarshalJSON delegates to whichever variant is set.
func (e ElementType) MarshalJSON() ([]byte, error) {
	switch {
	case e.Text != nil:
		return json.Marshal(e.Text)
	case e.Image != nil:
		return json.Marshal(e.Image)
	}
	return nil, fmt.Errorf("element body has no variant")
}

// UnmarshalJSON dispatches on the "type" tag.
func (e *ElementType) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	switch tag.Type {
	case "text":
		e.Image = nil
		e.Text = new(TextElement)
		return json.Unmarshal(data, e.Text)
	case "image":
		e.Text = nil
		e.Image = new(ImageElement)
		return json.Unmarshal(data, e.Image)
	default:
		return fmt.Errorf("unknown element type %q", tag.Type)
	}
}

// Tags is the set of string tags on an element. It serializes as a
// sorted array and deduplicates on decode.
type Tags struct {
	set.Set[string]
}

// NewTags builds a tag set from the given items.
func NewTags(items ...string) Tags { return Tags{set.New(items...)} }

// MarshalJSON emits the tags as a sorted array, never null.
func (t Tags) MarshalJSON() ([]byte, error) {
	if t.Set == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.SortedList())
}

// UnmarshalJSON reads an array of tags into a set.
func (t *Tags) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	t.Set = set.New(items...)
	return nil
}

// Element is a single item on a canvas.
type Element struct {
	UUID         uuid.UUID   `json:"uuid"`
	Type         ElementType `json:"ty"`
	LastEditedBy *uuid.UUID  `json:"last_edited_by"`
	SelectedBy   *uuid.UUID  `json:"selected_by"`
	X            float64     `json:"x"`
	Y            float64     `json:"y"`
	Anchor       Anchor      `json:"anchor"`
	Rotation     float64     `json:"rotation"`
	ScaleRate    ScaleRate   `json:"scale_rate"`
	ZIndex       float64     `json:"z_index"`
	Tags         Tags        `json:"tags"`
}

// NewTextElement builds a text element at the origin with the default
// styling and a random palette color.
func NewTextElement(content string) Element {
	return Element{
		UUID: uuid.New(),
		Type: ElementType{Text: &TextElement{
			Content:         content,
			Align:           TextAlignCenter,
			Color:           RandomColor(),
			Size:            30,
			Font:            TextFont{FontType: FontTypeSans},
			BackgroundColor: Transparent,
		}},
		Anchor:    CenterAnchor(),
		ScaleRate: ScaleRateNone,
		Tags:      NewTags(),
	}
}

// Validate checks structural requirements the decoder cannot express.
// It also normalizes a missing image overlay list to empty.
func (e *Element) Validate() error {
	if e.UUID == uuid.Nil {
		return fmt.Errorf("element is missing a uuid")
	}
	if e.Type.Text == nil && e.Type.Image == nil {
		return fmt.Errorf("element %s is missing its body", e.UUID)
	}
	if !e.ScaleRate.Valid() {
		return fmt.Errorf("element %s: invalid scale rate %q", e.UUID, e.ScaleRate)
	}
	if e.Tags.Set == nil {
		e.Tags = NewTags()
	}
	if e.Type.Text != nil {
		if err := e.Type.Text.validate(); err != nil {
			return fmt.Errorf("element %s: %w", e.UUID, err)
		}
	}
	if e.Type.Image != nil {
		if err := e.Type.Image.validate(); err != nil {
			return fmt.Errorf("element %s: %w", e.UUID, err)
		}
	}
	return nil
}

// SelectedByUser reports whether the element is held by the given user.
func (e *Element) SelectedByUser(id uuid.UUID) bool {
	return e.SelectedBy != nil && *e.SelectedBy == id
}

// Unselected reports whether no user holds the element.
func (e *Element) Unselected() bool { return e.SelectedBy == nil }
