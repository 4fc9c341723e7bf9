// Package funnel computes attribution metrics over persisted stage records.
// The three stages of an attempt are stored as independent rows joined only
// by trace identifier, so the counts are derived with set algebra over trace
// identifiers rather than row counts with status filters; row counts double
// count attempts that produced more than one related record.
package funnel

import (
	"github.com/cradoe/kycflow/internal/models"
	"github.com/cradoe/kycflow/internal/setu"
)

type Metrics struct {
	AttemptsTotal                  int `json:"attempts_total"`
	KycSuccessful                  int `json:"kyc_successful"`
	FailedDueToIdentity            int `json:"failed_due_to_identity"`
	FailedDueToBank                int `json:"failed_due_to_bank"`
	FailedDueToBoth                int `json:"failed_due_to_both"`
	IdentitySucceededNoBankAttempt int `json:"identity_succeeded_no_bank_attempt"`
}

type traceSet map[string]struct{}

func (s traceSet) add(trace string) {
	s[trace] = struct{}{}
}

func (s traceSet) has(trace string) bool {
	_, ok := s[trace]
	return ok
}

// Compute buckets stage records into per-attempt outcome sets and derives
// the funnel counts. Records without a trace identifier cannot be attributed
// and are excluded from every set, but identity records still count towards
// AttemptsTotal (one identity record per attempt).
func Compute(verifications []models.PANVerification, challenges []models.ReversePennyDrop) *Metrics {
	identitySuccess := traceSet{}
	identityFail := traceSet{}

	for _, v := range verifications {
		if v.TraceID == "" {
			continue
		}
		if v.Status == setu.IdentityStatusSuccess {
			identitySuccess.add(v.TraceID)
		} else {
			identityFail.add(v.TraceID)
		}
	}

	bankSuccess := traceSet{}
	bankFail := traceSet{}

	for _, c := range challenges {
		if c.TraceID == "" {
			continue
		}
		if c.Status == setu.ChallengeStatusSuccess {
			bankSuccess.add(c.TraceID)
		} else {
			bankFail.add(c.TraceID)
		}
	}

	metrics := &Metrics{
		AttemptsTotal: len(verifications),
	}

	for trace := range identitySuccess {
		switch {
		case bankSuccess.has(trace):
			metrics.KycSuccessful++
		case bankFail.has(trace):
			metrics.FailedDueToBank++
		default:
			metrics.IdentitySucceededNoBankAttempt++
		}
	}

	for trace := range identityFail {
		if bankFail.has(trace) {
			metrics.FailedDueToBoth++
		} else {
			metrics.FailedDueToIdentity++
		}
	}

	return metrics
}
