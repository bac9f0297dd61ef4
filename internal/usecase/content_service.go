package usecase

import (
	"strings"

	"github.com/google/uuid"

	"norahair-backend/internal/domain"
)

type ContentRepo interface {
	ListTestimonials() ([]domain.Testimonial, error)
	PutTestimonial(*domain.Testimonial) error
	PutSubscriber(*domain.Subscriber) error
}

// ContentService covers the marketing surface: testimonials and the
// newsletter list.
type ContentService struct {
	Repo ContentRepo
}

func (s *ContentService) Testimonials() ([]domain.Testimonial, error) {
	return s.Repo.ListTestimonials()
}

func (s *ContentService) AddTestimonial(t *domain.Testimonial) (*domain.Testimonial, error) {
	if t.CustomerName == "" || t.Content == "" {
		return nil, ErrBadRequest("customerName and content required")
	}
	if t.Rating < 1 || t.Rating > 5 {
		return nil, ErrBadRequest("rating must be 1-5")
	}
	t.ID = uuid.NewString()
	if err := s.Repo.PutTestimonial(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ContentService) Subscribe(email, phone string) (*domain.Subscriber, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrBadRequest("valid email required")
	}
	sub := &domain.Subscriber{ID: uuid.NewString(), Email: email, Phone: phone}
	if err := s.Repo.PutSubscriber(sub); err != nil {
		return nil, err
	}
	return sub, nil
}
