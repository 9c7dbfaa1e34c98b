package models

type Channel string

const (
	ChannelManual  Channel = "manual"
	ChannelGateway Channel = "gateway"
)

// Gateway method keys, each mapped to its own bridge endpoint.
const (
	MethodEwallet = "ewallet"
	MethodCard    = "cc"
	MethodVA      = "va"
)

// GatewayRequest is the payload sent to one of the gateway bridge
// endpoints. Amount is in minor currency units.
type GatewayRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	ProductName string `json:"product_name"`
	OrderID     string `json:"order_id"`
}

// GatewayResponse is the bridge's answer to a charge request.
type GatewayResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirect_url,omitempty"`
	SnapToken   string `json:"snap_token,omitempty"`
	OrderID     string `json:"order_id,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ProofFile is an uploaded proof-of-payment attachment.
type ProofFile struct {
	Filename string
	Content  []byte
}

// ManualRequest is the multipart proof-of-payment submission.
type ManualRequest struct {
	OrderID     string
	Proof       *ProofFile
	PaidAt      string // dd-mm-yyyy HH:mm:ss
	MethodLabel string
	Amount      int64
}

// ChannelDecision is the fully built request for whichever confirmation
// channel was selected. Construction is complete before any network call.
type ChannelDecision struct {
	Channel  Channel
	Endpoint string // gateway method key, empty for manual
	Gateway  *GatewayRequest
	Manual   *ManualRequest
}

// ChannelOutcome reports how a confirmation attempt ended. A failed
// gateway attempt sets FallbackToManual so the caller can re-route the
// customer instead of dead-ending.
type ChannelOutcome struct {
	Channel          Channel `json:"channel"`
	Success          bool    `json:"success"`
	RedirectURL      string  `json:"redirect_url,omitempty"`
	FallbackToManual bool    `json:"fallback_to_manual,omitempty"`
	Message          string  `json:"message,omitempty"`
}

// APIResult is the backend's generic success/message envelope.
type APIResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ReconcileResult says what reconciliation did to the cached intent.
type ReconcileResult string

const (
	ReconcileKept    ReconcileResult = "kept"
	ReconcileCleared ReconcileResult = "cleared"
)

// ReconcileReport is the outcome of one reconciliation refresh.
type ReconcileReport struct {
	Intent       *CachedOrderIntent `json:"intent,omitempty"`
	MatchedOrder *Order             `json:"matched_order,omitempty"`
	DerivedState PaymentState       `json:"derived_state,omitempty"`
	CacheResult  ReconcileResult    `json:"cache_result,omitempty"`
}
