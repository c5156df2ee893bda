package printing

import "github.com/rentalcore/backend/internal/domain/shared"

const maxMarginMM = 100

// Margins represents the page margins in millimeters
type Margins struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// NewMargins creates a new Margins value object
func NewMargins(top, right, bottom, left int) (Margins, error) {
	for _, v := range []int{top, right, bottom, left} {
		if v < 0 {
			return Margins{}, shared.NewValidationError("INVALID_MARGINS", "Margins cannot be negative")
		}
		if v > maxMarginMM {
			return Margins{}, shared.NewValidationError("INVALID_MARGINS", "Margins cannot exceed 100mm")
		}
	}
	return Margins{Top: top, Right: right, Bottom: bottom, Left: left}, nil
}

// DefaultMargins returns the page margins used for sheet paper
func DefaultMargins() Margins {
	return Margins{Top: 12, Right: 12, Bottom: 12, Left: 12}
}

// ReceiptMargins returns minimal margins suitable for roll paper
func ReceiptMargins() Margins {
	return Margins{Top: 2, Right: 2, Bottom: 2, Left: 2}
}

// IsZero returns true if all margins are zero
func (m Margins) IsZero() bool {
	return m == Margins{}
}
