package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/parkeasy/parkeasy-backend/internal/models"
	"github.com/parkeasy/parkeasy-backend/internal/store"
)

// FeedbackService stores and lists user feedback.
type FeedbackService interface {
	ListFeedback(ctx context.Context) ([]models.Feedback, error)
	SubmitFeedback(ctx context.Context, req *models.SubmitFeedbackRequest) (*models.Feedback, error)
	DeleteFeedbackByEmail(ctx context.Context, email string) (int, error)
}

type feedbackServiceImpl struct {
	feedback store.FeedbackStore
	now      func() time.Time
}

// NewFeedbackService creates a FeedbackService over the given store.
func NewFeedbackService(feedback store.FeedbackStore) FeedbackService {
	return &feedbackServiceImpl{feedback: feedback, now: time.Now}
}

func (s *feedbackServiceImpl) ListFeedback(ctx context.Context) ([]models.Feedback, error) {
	return s.feedback.Load(ctx)
}

func (s *feedbackServiceImpl) SubmitFeedback(ctx context.Context, req *models.SubmitFeedbackRequest) (*models.Feedback, error) {
	entries, err := s.feedback.Load(ctx)
	if err != nil {
		return nil, err
	}

	entry := models.Feedback{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Email:     req.Email,
		Rating:    req.Rating,
		Feedback:  req.Feedback,
		CreatedAt: s.now(),
	}
	entries = append(entries, entry)

	if err := s.feedback.Save(ctx, entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteFeedbackByEmail removes every feedback entry submitted under the
// given email. Used when an account is deleted.
func (s *feedbackServiceImpl) DeleteFeedbackByEmail(ctx context.Context, email string) (int, error) {
	entries, err := s.feedback.Load(ctx)
	if err != nil {
		return 0, err
	}

	kept := entries[:0]
	removed := 0
	for _, e := range entries {
		if e.Email == email {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.feedback.Save(ctx, kept)
}
