// Package layout translates source spatial codes (IDS operators) into a
// normalized descriptor. Layout is cosmetic metadata: unknown codes and
// operand-count mismatches degrade to Unknown, they never fail a request.
package layout

// Tag is the canonical spatial arrangement of a character's components.
type Tag int

const (
	Unknown Tag = iota
	Single
	LeftRight
	TopBottom
	LeftMiddleRight
	TopMiddleBottom
	FullSurround
	SurroundFromAbove
	SurroundFromBelow
	SurroundFromLeft
	SurroundFromRight
	SurroundFromUpperLeft
	SurroundFromLowerLeft
	SurroundFromUpperRight
	Overlaid
)

var tagNames = map[Tag]string{
	Unknown:                "UNKNOWN",
	Single:                 "SINGLE",
	LeftRight:              "LEFT_RIGHT",
	TopBottom:              "TOP_BOTTOM",
	LeftMiddleRight:        "LEFT_MIDDLE_RIGHT",
	TopMiddleBottom:        "TOP_MIDDLE_BOTTOM",
	FullSurround:           "FULL_SURROUND",
	SurroundFromAbove:      "SURROUND_FROM_ABOVE",
	SurroundFromBelow:      "SURROUND_FROM_BELOW",
	SurroundFromLeft:       "SURROUND_FROM_LEFT",
	SurroundFromRight:      "SURROUND_FROM_RIGHT",
	SurroundFromUpperLeft:  "SURROUND_FROM_UPPER_LEFT",
	SurroundFromLowerLeft:  "SURROUND_FROM_LOWER_LEFT",
	SurroundFromUpperRight: "SURROUND_FROM_UPPER_RIGHT",
	Overlaid:               "OVERLAID",
}

// labels are the short human-readable forms used on cards.
var labels = map[Tag]string{
	Unknown:                "unknown",
	Single:                 "single",
	LeftRight:              "left-right",
	TopBottom:              "top-bottom",
	LeftMiddleRight:        "left-mid-right",
	TopMiddleBottom:        "top-mid-bottom",
	FullSurround:           "surround",
	SurroundFromAbove:      "surround-open-bottom",
	SurroundFromBelow:      "surround-open-top",
	SurroundFromLeft:       "surround-open-right",
	SurroundFromRight:      "surround-open-left",
	SurroundFromUpperLeft:  "top-left-wrap",
	SurroundFromLowerLeft:  "bottom-left-wrap",
	SurroundFromUpperRight: "top-right-wrap",
	Overlaid:               "overlaid",
}

func (t Tag) String() string { return tagNames[t] }

// Label returns the card-facing form of the tag ("left-right" etc).
func (t Tag) Label() string { return labels[t] }

// codeTags maps IDS operators to tags with their operand arity.
// ⿽ (surround from lower right) has no canonical tag and stays Unknown.
var codeTags = map[string]struct {
	tag   Tag
	arity int
}{
	"⿰": {LeftRight, 2},
	"⿱": {TopBottom, 2},
	"⿲": {LeftMiddleRight, 3},
	"⿳": {TopMiddleBottom, 3},
	"⿴": {FullSurround, 2},
	"⿵": {SurroundFromAbove, 2},
	"⿶": {SurroundFromBelow, 2},
	"⿷": {SurroundFromLeft, 2},
	"⿼": {SurroundFromRight, 2},
	"⿸": {SurroundFromUpperLeft, 2},
	"⿺": {SurroundFromLowerLeft, 2},
	"⿹": {SurroundFromUpperRight, 2},
	"⿻": {Overlaid, 2},
}

// Descriptor annotates one node of a decomposition tree. Operands always
// equals the child count of the node it annotates.
type Descriptor struct {
	Tag      Tag
	Operands int
}

// Interpret maps a source layout code and the resolved child count to a
// descriptor. An empty code with no children is a Single leaf; an unmapped
// code, or an operator whose arity does not match childCount, degrades to
// Unknown.
func Interpret(code string, childCount int) Descriptor {
	if code == "" {
		if childCount == 0 {
			return Descriptor{Tag: Single}
		}
		return Descriptor{Tag: Unknown, Operands: childCount}
	}
	ct, ok := codeTags[code]
	if !ok || ct.arity != childCount {
		return Descriptor{Tag: Unknown, Operands: childCount}
	}
	return Descriptor{Tag: ct.tag, Operands: childCount}
}
