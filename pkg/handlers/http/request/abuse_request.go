package request

// FlagIdentityRequest is the body for flagging an identity hash.
type FlagIdentityRequest struct {
	Reason string `json:"reason"`
}

// BanIdentityRequest is the body for banning an identity hash. A zero
// DurationHours falls back to the reason's default; a negative value means
// permanent.
type BanIdentityRequest struct {
	Reason        string `json:"reason"`
	DurationHours int    `json:"duration_hours,omitempty"`
	Description   string `json:"description,omitempty"`
	CreatedBy     string `json:"created_by,omitempty"`
}

// TrackDebateRequest registers or releases a long-running debate session.
type TrackDebateRequest struct {
	SessionID string `json:"session_id"`
	DebateID  string `json:"debate_id"`
}
