package funnel

import (
	"testing"

	"github.com/cradoe/kycflow/internal/models"
	"github.com/cradoe/kycflow/internal/setu"
	"github.com/stretchr/testify/require"
)

func identityRow(trace, status string) models.PANVerification {
	return models.PANVerification{TraceID: trace, Status: status}
}

func challengeRow(trace, status string) models.ReversePennyDrop {
	return models.ReversePennyDrop{TraceID: trace, Status: status}
}

func TestCompute_Empty(t *testing.T) {
	metrics := Compute(nil, nil)

	require.Equal(t, &Metrics{}, metrics)
}

func TestCompute_TwoAttemptFunnel(t *testing.T) {
	// first attempt passed identity but the bank challenge expired; the
	// retry passed both stages
	verifications := []models.PANVerification{
		identityRow("trace-a", setu.IdentityStatusSuccess),
		identityRow("trace-b", setu.IdentityStatusSuccess),
	}
	challenges := []models.ReversePennyDrop{
		challengeRow("trace-a", setu.ChallengeStatusExpired),
		challengeRow("trace-b", setu.ChallengeStatusSuccess),
	}

	metrics := Compute(verifications, challenges)

	require.Equal(t, 2, metrics.AttemptsTotal)
	require.Equal(t, 1, metrics.KycSuccessful)
	require.Equal(t, 1, metrics.FailedDueToBank)
	require.Equal(t, 0, metrics.FailedDueToIdentity)
	require.Equal(t, 0, metrics.FailedDueToBoth)
	require.Equal(t, 0, metrics.IdentitySucceededNoBankAttempt)
}

func TestCompute_IdentityFailureBuckets(t *testing.T) {
	verifications := []models.PANVerification{
		identityRow("trace-a", setu.IdentityStatusFailed),
		identityRow("trace-b", setu.IdentityStatusNotFound),
	}
	// trace-b somehow reached the bank stage and failed there too
	challenges := []models.ReversePennyDrop{
		challengeRow("trace-b", setu.ChallengeStatusError),
	}

	metrics := Compute(verifications, challenges)

	require.Equal(t, 2, metrics.AttemptsTotal)
	require.Equal(t, 1, metrics.FailedDueToIdentity)
	require.Equal(t, 1, metrics.FailedDueToBoth)
	require.Equal(t, 0, metrics.KycSuccessful)
}

func TestCompute_IdentitySucceededNoBankAttempt(t *testing.T) {
	verifications := []models.PANVerification{
		identityRow("trace-a", setu.IdentityStatusSuccess),
	}

	metrics := Compute(verifications, nil)

	require.Equal(t, 1, metrics.AttemptsTotal)
	require.Equal(t, 1, metrics.IdentitySucceededNoBankAttempt)
	require.Equal(t, 0, metrics.KycSuccessful)
}

func TestCompute_PendingChallengeCountsAsBankFailure(t *testing.T) {
	// a challenge stuck in CREATED never settled, so the attempt did not
	// complete successfully
	verifications := []models.PANVerification{
		identityRow("trace-a", setu.IdentityStatusSuccess),
	}
	challenges := []models.ReversePennyDrop{
		challengeRow("trace-a", setu.ChallengeStatusCreated),
	}

	metrics := Compute(verifications, challenges)

	require.Equal(t, 1, metrics.FailedDueToBank)
	require.Equal(t, 0, metrics.KycSuccessful)
}

func TestCompute_SettledChallengeWinsOverFailedRetry(t *testing.T) {
	// one attempt produced a failed challenge record and then a successful
	// one; the attempt counts once, as successful
	verifications := []models.PANVerification{
		identityRow("trace-a", setu.IdentityStatusSuccess),
	}
	challenges := []models.ReversePennyDrop{
		challengeRow("trace-a", setu.ChallengeStatusError),
		challengeRow("trace-a", setu.ChallengeStatusSuccess),
	}

	metrics := Compute(verifications, challenges)

	require.Equal(t, 1, metrics.AttemptsTotal)
	require.Equal(t, 1, metrics.KycSuccessful)
	require.Equal(t, 0, metrics.FailedDueToBank)
}

func TestCompute_TracelessRecordsOnlyCountTowardsAttempts(t *testing.T) {
	verifications := []models.PANVerification{
		identityRow("", setu.IdentityStatusSuccess),
		identityRow("trace-a", setu.IdentityStatusSuccess),
	}
	challenges := []models.ReversePennyDrop{
		challengeRow("", setu.ChallengeStatusSuccess),
		challengeRow("trace-a", setu.ChallengeStatusSuccess),
	}

	metrics := Compute(verifications, challenges)

	require.Equal(t, 2, metrics.AttemptsTotal)
	require.Equal(t, 1, metrics.KycSuccessful)
	require.Equal(t, 0, metrics.IdentitySucceededNoBankAttempt)
}

func TestCompute_BucketsNeverExceedAttempts(t *testing.T) {
	verifications := []models.PANVerification{
		identityRow("trace-a", setu.IdentityStatusSuccess),
		identityRow("trace-b", setu.IdentityStatusSuccess),
		identityRow("trace-c", setu.IdentityStatusFailed),
		identityRow("trace-d", setu.IdentityStatusError),
		identityRow("", setu.IdentityStatusSuccess),
	}
	challenges := []models.ReversePennyDrop{
		challengeRow("trace-a", setu.ChallengeStatusSuccess),
		challengeRow("trace-a", setu.ChallengeStatusExpired),
		challengeRow("trace-b", setu.ChallengeStatusExpired),
		challengeRow("trace-d", setu.ChallengeStatusError),
	}

	metrics := Compute(verifications, challenges)

	sum := metrics.KycSuccessful +
		metrics.FailedDueToIdentity +
		metrics.FailedDueToBank +
		metrics.FailedDueToBoth +
		metrics.IdentitySucceededNoBankAttempt

	require.LessOrEqual(t, sum, metrics.AttemptsTotal)
	require.Equal(t, 1, metrics.KycSuccessful)
	require.Equal(t, 1, metrics.FailedDueToBank)
	require.Equal(t, 1, metrics.FailedDueToIdentity)
	require.Equal(t, 1, metrics.FailedDueToBoth)
}
