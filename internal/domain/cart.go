package domain

// ProductSnapshot is the slice of product data a cart line keeps so the
// cart can render without a catalog round trip.
type ProductSnapshot struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// CartLine is one entry of the remote cart. LineID is the store-assigned
// identity used for quantity updates and removal; at most one line exists
// per (account, product).
type CartLine struct {
	LineID    string          `json:"line_id"`
	ProductID int64           `json:"product_id"`
	UnitPrice int64           `json:"unit_price"` // VND, no fractional unit
	Quantity  int             `json:"quantity"`
	Product   ProductSnapshot `json:"product"`
}

func (l CartLine) Subtotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// CartView is the locally owned view of the cart. Totals are derived from
// Lines; Recompute is the only way they change.
type CartView struct {
	Lines       []CartLine `json:"lines"`
	ItemCount   int        `json:"item_count"`
	LineCount   int        `json:"line_count"`
	AmountTotal int64      `json:"amount_total"`
}

// Recompute rebuilds the derived totals from the current lines.
func (v *CartView) Recompute() {
	v.LineCount = len(v.Lines)
	v.ItemCount = 0
	v.AmountTotal = 0
	for _, l := range v.Lines {
		v.ItemCount += l.Quantity
		v.AmountTotal += l.Subtotal()
	}
}

// Line returns the index of the line with the given id, or -1.
func (v *CartView) Line(lineID string) int {
	for i := range v.Lines {
		if v.Lines[i].LineID == lineID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can hold the view without racing
// the synchronizer.
func (v *CartView) Clone() CartView {
	cp := *v
	cp.Lines = make([]CartLine, len(v.Lines))
	copy(cp.Lines, v.Lines)
	return cp
}

func (v CartView) IsEmpty() bool {
	return len(v.Lines) == 0
}
