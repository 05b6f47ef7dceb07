package service

import (
	"time"

	"prop-challenge/internal/model"
	"prop-challenge/pkg/logger"
)

// EvaluationResult reports what Evaluate decided for one cycle.
type EvaluationResult struct {
	Transitioned bool
	Status       model.ChallengeStatus
	FailedReason *model.FailedReason
}

// EvaluationService is the challenge state machine. Given current equity it
// decides whether a challenge stays active, fails on a drawdown limit, or
// passes on the profit target. It mutates the challenge in memory only;
// persisting the transition is the caller's job.
type EvaluationService interface {
	Evaluate(challenge *model.Challenge, currentEquity float64, now time.Time) (EvaluationResult, error)
}

type evaluationService struct {
	log *logger.Logger
}

func NewEvaluationService(log *logger.Logger) EvaluationService {
	return &evaluationService{
		log: log,
	}
}

// Evaluate applies the loss and profit rules in fixed order: total loss,
// then daily loss, then profit target. A breach of both loss limits at once
// is recorded as total_loss, the account-ending condition. All threshold
// comparisons are inclusive: hitting the limit exactly triggers the
// transition.
func (s *evaluationService) Evaluate(challenge *model.Challenge, currentEquity float64, now time.Time) (EvaluationResult, error) {
	noop := EvaluationResult{Status: challenge.Status, FailedReason: challenge.FailedReason}

	// Terminal states are immutable; re-evaluation is a no-op, not an error.
	if challenge.IsTerminal() {
		return noop, nil
	}

	if challenge.InitialBalance <= 0 {
		return noop, ErrCorruptChallenge
	}

	challenge.CheckAndResetDailyBalance(now)

	initial := challenge.InitialBalance
	totalLoss := initial - currentEquity
	dailyLoss := challenge.DailyBaseline() - currentEquity
	profit := currentEquity - initial

	maxTotalLoss := initial * challenge.MaxTotalLossPct / 100
	maxDailyLoss := initial * challenge.MaxDailyLossPct / 100
	profitTarget := initial * challenge.ProfitTargetPct / 100

	var (
		newStatus = model.ChallengeStatusActive
		reason    *model.FailedReason
	)

	switch {
	case totalLoss >= maxTotalLoss:
		newStatus = model.ChallengeStatusFailed
		r := model.FailedReasonTotalLoss
		reason = &r
	case dailyLoss >= maxDailyLoss:
		newStatus = model.ChallengeStatusFailed
		r := model.FailedReasonDailyLoss
		reason = &r
	case profit >= profitTarget:
		newStatus = model.ChallengeStatusPassed
	}

	if newStatus == model.ChallengeStatusActive {
		return EvaluationResult{Status: model.ChallengeStatusActive}, nil
	}

	completedAt := now
	challenge.Status = newStatus
	challenge.FailedReason = reason
	challenge.CompletedAt = &completedAt

	s.log.Info("Challenge transitioned",
		logger.StringField("challenge_id", challenge.ID),
		logger.StringField("status", string(newStatus)),
		logger.Float64Field("equity", currentEquity),
		logger.Field("failed_reason", reason))

	return EvaluationResult{
		Transitioned: true,
		Status:       newStatus,
		FailedReason: reason,
	}, nil
}
