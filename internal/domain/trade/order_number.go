package trade

import (
	"strings"
	"time"
)

const (
	orderNumberPrefix = "ORD"
	orderNumberLayout = "20060102150405"
	subjectDateLayout = "2006-01-02"
)

// GenerateOrderNumber derives the order number from the submission time with
// second resolution. Two submissions in the same second produce the same number;
// the unique index rejects the second one.
func GenerateOrderNumber(now time.Time) string {
	return orderNumberPrefix + now.Format(orderNumberLayout)
}

// DefaultSubject returns the subject used when the customer supplies none
func DefaultSubject(orderNumber string, now time.Time) string {
	return "Discount Request for order no: " + orderNumber + " on " + now.Format(subjectDateLayout)
}

// DefaultCustomerName builds a display name from the last six characters of the phone
func DefaultCustomerName(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) > 6 {
		phone = phone[len(phone)-6:]
	}
	return "Customer # " + phone
}
