package services

import "time"

// SetReferenceGenerator replaces the quote reference generator
func (s *InquiryService) SetReferenceGenerator(f func() (string, error)) {
	s.newReference = f
}

// SetClock fixes the time used for blob keys
func (s *InquiryService) SetClock(f func() time.Time) {
	s.now = f
}
