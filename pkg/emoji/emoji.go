// Package emoji maps emotion labels onto display glyphs.
package emoji

// Label is one of the emotion categories that has a glyph.
type Label string

const (
	Anger    Label = "anger"
	Disgust  Label = "disgust"
	Fear     Label = "fear"
	Happy    Label = "happy"
	Joy      Label = "joy"
	Neutral  Label = "neutral"
	Sad      Label = "sad"
	Sadness  Label = "sadness"
	Shame    Label = "shame"
	Surprise Label = "surprise"
)

// Glyph returns the glyph for l, or "" for labels outside the table.
func (l Label) Glyph() string {
	switch l {
	case Anger:
		return "😠"
	case Disgust:
		return "🤮"
	case Fear:
		return "😨😱"
	case Happy:
		return "🤗"
	case Joy:
		return "😂"
	case Neutral:
		return "😐"
	case Sad, Sadness:
		return "😔"
	case Shame:
		return "😳"
	case Surprise:
		return "😮"
	default:
		return ""
	}
}

// Annotate returns the glyph mapped to label. Unknown labels get the empty
// string; it never fails.
func Annotate(label string) string {
	return Label(label).Glyph()
}

// Known reports whether label has a glyph.
func Known(label string) bool {
	return Annotate(label) != ""
}

// Labels returns the labels in table order.
func Labels() []Label {
	return []Label{Anger, Disgust, Fear, Happy, Joy, Neutral, Sad, Sadness, Shame, Surprise}
}
