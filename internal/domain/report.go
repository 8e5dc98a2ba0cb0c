package domain

import "time"

// RunState is the terminal state of one pipeline run.
type RunState string

const (
	StateDone        RunState = "done"
	StateFailedEarly RunState = "failed_early"
	StateAborted     RunState = "aborted"
)

// RecipientStatus categorizes what happened to one recipient during a run.
type RecipientStatus string

const (
	OutcomeSent             RecipientStatus = "sent"
	OutcomeSkippedNoContent RecipientStatus = "skipped_no_content"
	OutcomeFailed           RecipientStatus = "failed"
)

// Failure reasons carried by failed recipient outcomes.
const (
	ReasonRankingUnavailable = "ranking_unavailable"
	ReasonTransportFailed    = "transport_failed"
	ReasonLedgerUnavailable  = "ledger_unavailable"
)

// RecipientOutcome is the per-recipient result accumulated by the orchestrator.
type RecipientOutcome struct {
	Recipient string
	Status    RecipientStatus
	Reason    string
	Items     int
}

// StageReport aggregates one stage's per-item results.
type StageReport struct {
	Attempted int
	Succeeded int
	Failed    []int64
}

// RunReport summarizes a full pipeline run regardless of partial failures.
type RunReport struct {
	StartedAt     time.Time
	FinishedAt    time.Time
	State         RunState
	ItemsIngested int
	Summaries     StageReport
	Recipients    []RecipientOutcome
}

// Sent counts recipients that received a digest.
func (r RunReport) Sent() int { return r.countStatus(OutcomeSent) }

// Skipped counts recipients with nothing eligible to send.
func (r RunReport) Skipped() int { return r.countStatus(OutcomeSkippedNoContent) }

// FailedRecipients counts recipients whose rank or delivery failed.
func (r RunReport) FailedRecipients() int { return r.countStatus(OutcomeFailed) }

func (r RunReport) countStatus(status RecipientStatus) int {
	n := 0
	for _, outcome := range r.Recipients {
		if outcome.Status == status {
			n++
		}
	}
	return n
}
