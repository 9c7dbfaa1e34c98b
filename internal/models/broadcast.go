package models

// BroadcastFilter is the server-bound target payload. Empty dimensions are
// omitted entirely so the backend applies its no-constraint default; all
// present dimensions combine conjunctively.
type BroadcastFilter struct {
	Products      []int64 `json:"produk,omitempty"`
	OrderStatus   string  `json:"status_order,omitempty"`
	PaymentStatus string  `json:"status_pembayaran,omitempty"`
	Label         string  `json:"label,omitempty"`
	AgentID       string  `json:"sales_id,omitempty"`
}

// Empty reports whether no dimension constrains the target set.
func (f BroadcastFilter) Empty() bool {
	return len(f.Products) == 0 && f.OrderStatus == "" && f.PaymentStatus == "" &&
		f.Label == "" && f.AgentID == ""
}

// BroadcastRequest is the messaging backend's dispatch payload.
type BroadcastRequest struct {
	Message string          `json:"message"`
	Target  BroadcastFilter `json:"target"`
	SendNow bool            `json:"langsung_kirim"`
	SendAt  string          `json:"tanggal_kirim,omitempty"`
}

type BroadcastResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    struct {
		TotalTarget int `json:"total_target"`
	} `json:"data"`
}

// BroadcastResult is what the operator sees after a dispatch. ZeroMatch is
// a warning, not an error; Description spells out which filters applied.
type BroadcastResult struct {
	TotalTarget int    `json:"total_target"`
	ZeroMatch   bool   `json:"zero_match"`
	Description string `json:"description,omitempty"`
}
