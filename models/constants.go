package models

import "time"

const DefaultHttpWaitTime = 10 * time.Second
const DefaultOracleWaitTime = 60 * time.Second
const DefaultLedgerWaitTime = 30 * time.Second

// DefaultMatchRatioThreshold is the minimum similarity between the submitted
// post text and the text extracted from the screenshot.
const DefaultMatchRatioThreshold = 0.80

const MinPostRating = 1
const MaxPostRating = 100

// UploadDateFormat is the calendar-day granularity used for stored post
// records. A user submitting twice on the same day produces an identical
// record and therefore the same storage key.
const UploadDateFormat = "2006-01-02"
