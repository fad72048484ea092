package models

// Verdict is the structured authenticity result returned by the scoring
// oracle for a single submission attempt. It is derived per attempt and never
// persisted; only the pass/fail decision propagates.
type Verdict struct {
	IsLinkedInPost bool    `json:"is_linkedin_post"`
	IsOwnPost      bool    `json:"is_own_post"`
	MatchRatio     float64 `json:"match_ratio" validate:"gte=0,lte=1"`
}

// PostRecord is the durable shape published to the blob store once a
// submission has passed authenticity checks.
type PostRecord struct {
	PostContent      string `json:"post_content"`
	UploadDate       string `json:"upload_date"`
	LinkedInUsername string `json:"linkedin_username"`
}

// StorageKey is the deterministic record name, one per user per calendar day.
func (r PostRecord) StorageKey() string {
	return r.LinkedInUsername + "@" + r.UploadDate
}

// Submission pairs an address with the CID it committed on-chain. The ledger
// returns submissions in a stable order, which the announcement flow relies
// on for reproducible tie-breaks.
type Submission struct {
	Address string
	Cid     string
}

type RegistrationResult struct {
	Address string `json:"user_address"`
	TxHash  string `json:"tx_hash"`
}

type SubmissionResult struct {
	Cid      string `json:"upload_cid"`
	Username string `json:"linkedin_username"`
	TxHash   string `json:"tx_hash"`
}

type AnnouncementResult struct {
	Address string `json:"user_address"`
	Rating  int    `json:"rating"`
	TxHash  string `json:"txn_hash"`
}
