package models

type MetricName string

// Counts
const (
	MetricName_AnnouncementRun     MetricName = "announcement_run"
	MetricName_LedgerRejected      MetricName = "ledger_rejected"
	MetricName_LedgerWrite         MetricName = "ledger_write"
	MetricName_OracleError         MetricName = "oracle_error"
	MetricName_OracleNonConformant MetricName = "oracle_non_conformant"
	MetricName_PostPublished       MetricName = "post_published"
	MetricName_SubmissionAccepted  MetricName = "submission_accepted"
	MetricName_SubmissionRejected  MetricName = "submission_rejected"
	MetricName_UserRegistered      MetricName = "user_registered"
	MetricName_WinnerAnnounced     MetricName = "winner_announced"
)

// Distributions
const (
	MetricName_PostRating MetricName = "post_rating"
)

// Gauges
const (
	MetricName_SubmissionPool MetricName = "submission_pool"
)

const MetricsCallerName = "go-rewards"
