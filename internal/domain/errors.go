package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRecorded signals that a delivery record for the pair already
	// exists. It is a benign outcome, not a failure.
	ErrAlreadyRecorded = errors.New("delivery already recorded")

	// ErrRankingUnavailable marks a recipient whose candidates could not be
	// ranked; the recipient is skipped, never sent an unranked digest.
	ErrRankingUnavailable = errors.New("ranking unavailable")

	// ErrStageUnavailable marks a stage that could not query its own inputs.
	ErrStageUnavailable = errors.New("stage unavailable")
)

// FatalIngestionError aborts the whole run: with no ingested content there is
// nothing to summarize or deliver.
type FatalIngestionError struct {
	Cause error
}

func (e *FatalIngestionError) Error() string {
	return fmt.Sprintf("fatal ingestion failure: %v", e.Cause)
}

func (e *FatalIngestionError) Unwrap() error { return e.Cause }

// SummarizationError records one item's failed summarization attempt.
type SummarizationError struct {
	ContentItemID int64
	Cause         error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize item %d: %v", e.ContentItemID, e.Cause)
}

func (e *SummarizationError) Unwrap() error { return e.Cause }

// TransportError records a failed send for one recipient.
type TransportError struct {
	Recipient string
	Cause     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("send to %s: %v", e.Recipient, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }
