package persistence

import (
	"errors"

	"github.com/sisl/eshop/internal/domain/shared"
	"gorm.io/gorm"
)

// translateNotFound maps gorm.ErrRecordNotFound to shared.ErrNotFound
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// translateWriteError maps a unique violation to onDuplicate, or to the generic
// integrity error when onDuplicate is nil. Requires TranslateError on the gorm.DB.
func translateWriteError(err error, onDuplicate *shared.DomainError) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if onDuplicate != nil {
			return shared.NewDomainErrorWithCause(onDuplicate.Code, onDuplicate.Message, err)
		}
		return shared.NewDomainErrorWithCause(shared.ErrIntegrity.Code, "Integrity error while saving", err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return shared.NewDomainErrorWithCause(shared.ErrIntegrity.Code, "Referenced record does not exist or is still in use", err)
	}
	return err
}

// ErrDuplicateOrderNumber is returned when two quotations are numbered in the same second
var ErrDuplicateOrderNumber = shared.NewDomainError("DUPLICATE_ORDER_NUMBER",
	"A quotation with this order number already exists; please resubmit")
