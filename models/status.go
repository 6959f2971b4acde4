package models

import "fmt"

// StatusError is returned when a status value is not part of an entity's enum
type StatusError struct {
	Entity string
	Value  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%q is not a valid %s status", e.Value, e.Entity)
}

// ContactStatus is the triage state of a ContactMessage
type ContactStatus string

const (
	ContactStatusNew       ContactStatus = "new"
	ContactStatusContacted ContactStatus = "contacted"
	ContactStatusClosed    ContactStatus = "closed"
)

// ContactStatuses lists every ContactStatus in workflow order
var ContactStatuses = []ContactStatus{ContactStatusNew, ContactStatusContacted, ContactStatusClosed}

// Valid reports whether s is a known contact status
func (s ContactStatus) Valid() bool {
	for _, v := range ContactStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// TransitionTo returns next if it is a valid status. Staff may move a message
// between any two statuses, including back to new.
func (s ContactStatus) TransitionTo(next ContactStatus) (ContactStatus, error) {
	if !next.Valid() {
		return s, &StatusError{Entity: "contact message", Value: string(next)}
	}
	return next, nil
}

// AfterReply returns the status a message moves to after a successful reply
func (s ContactStatus) AfterReply() (ContactStatus, bool) {
	if s == ContactStatusNew {
		return ContactStatusContacted, true
	}
	return s, false
}

// QuoteStatus is the triage state of a QuoteRequest
type QuoteStatus string

const (
	QuoteStatusNew         QuoteStatus = "new"
	QuoteStatusReviewing   QuoteStatus = "reviewing"
	QuoteStatusQuoted      QuoteStatus = "quoted"
	QuoteStatusNegotiating QuoteStatus = "negotiating"
	QuoteStatusAccepted    QuoteStatus = "accepted"
	QuoteStatusRejected    QuoteStatus = "rejected"
	QuoteStatusClosed      QuoteStatus = "closed"
)

// QuoteStatuses lists every QuoteStatus in workflow order
var QuoteStatuses = []QuoteStatus{
	QuoteStatusNew,
	QuoteStatusReviewing,
	QuoteStatusQuoted,
	QuoteStatusNegotiating,
	QuoteStatusAccepted,
	QuoteStatusRejected,
	QuoteStatusClosed,
}

// Valid reports whether s is a known quote status
func (s QuoteStatus) Valid() bool {
	for _, v := range QuoteStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// TransitionTo returns next if it is a valid status; any valid target is allowed
func (s QuoteStatus) TransitionTo(next QuoteStatus) (QuoteStatus, error) {
	if !next.Valid() {
		return s, &StatusError{Entity: "quote request", Value: string(next)}
	}
	return next, nil
}

// AfterReply returns the status a quote moves to after a successful reply
func (s QuoteStatus) AfterReply() (QuoteStatus, bool) {
	if s == QuoteStatusNew || s == QuoteStatusReviewing {
		return QuoteStatusQuoted, true
	}
	return s, false
}

// InquiryStatus is the triage state of a product Inquiry
type InquiryStatus string

const (
	InquiryStatusNew       InquiryStatus = "new"
	InquiryStatusContacted InquiryStatus = "contacted"
	InquiryStatusQuoted    InquiryStatus = "quoted"
	InquiryStatusClosed    InquiryStatus = "closed"
)

// InquiryStatuses lists every InquiryStatus in workflow order
var InquiryStatuses = []InquiryStatus{InquiryStatusNew, InquiryStatusContacted, InquiryStatusQuoted, InquiryStatusClosed}

// Valid reports whether s is a known product inquiry status
func (s InquiryStatus) Valid() bool {
	for _, v := range InquiryStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// TransitionTo returns next if it is a valid status; any valid target is allowed
func (s InquiryStatus) TransitionTo(next InquiryStatus) (InquiryStatus, error) {
	if !next.Valid() {
		return s, &StatusError{Entity: "product inquiry", Value: string(next)}
	}
	return next, nil
}
