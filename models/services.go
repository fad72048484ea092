package models

import (
	"context"
)

// SignatureVerifier proves that a wallet controls an address by checking a
// signature over a flow-specific canonical message. Pure computation, no
// network calls.
type SignatureVerifier interface {
	VerifyRegistration(claimedAddress, signature string) error
	VerifySubmission(claimedAddress, signature string) error
}

// ScoringOracle is the external AI service providing authenticity verdicts
// and content ratings. Non-conforming responses are hard failures.
type ScoringOracle interface {
	CheckPost(ctx context.Context, postContent string, image []byte) (*Verdict, error)
	RatePost(ctx context.Context, postContent string) (int, error)
}

// BlobStore is the content-addressed store for post records.
type BlobStore interface {
	PublishPost(ctx context.Context, record *PostRecord) (string, error)
	FetchPost(ctx context.Context, cid string) (*PostRecord, error)
}

// Ledger is the deployed reward contract. Reads are safe to run concurrently;
// writes are serialized internally because they share the custodial signing
// key's account nonce.
type Ledger interface {
	GetUsername(ctx context.Context, address string) (string, error)
	IsSubmitted(ctx context.Context, address string) (bool, error)
	ListSubmissions(ctx context.Context) ([]Submission, error)
	Register(ctx context.Context, address, username string) (string, error)
	SubmitCid(ctx context.Context, address, cid string) (string, error)
	AnnounceWinner(ctx context.Context, address string) (string, error)
}

type ResourceMonitor interface {
	GetValue(ctx context.Context) (int, error)
}

type Notifier interface {
	SendAlert(title, desc, content string) error
	SendAnnouncement(title, desc string) error
}

type MetricService interface {
	Count(ctx context.Context, name MetricName, val int) error
	Gauge(ctx context.Context, name MetricName, monitor ResourceMonitor) error
	Distribution(ctx context.Context, name MetricName, val int) error
	Shutdown(ctx context.Context)
}

type Logger interface {
	Debugf(template string, args ...interface{})
	Debugw(msg string, args ...interface{})
	Errorf(template string, args ...interface{})
	Fatalf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Infoln(args ...interface{})
	Warnf(template string, args ...interface{})
	Sync() error
}
