package terminal

import (
	"errors"
	"fmt"

	"github.com/simaogato/tusec-backend/internal/domain"
)

const MsgRegistered = "User Registered Successfully!"

// PurchaseMessage confirms a completed purchase
func PurchaseMessage(r *domain.Receipt) string {
	return fmt.Sprintf("Purchased %d shares of %s!", r.Quantity, r.Company)
}

// ErrorMessage turns a failure into the text shown to the user
func ErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidPosition):
		return "Invalid position!"
	case errors.Is(err, domain.ErrMissingField):
		return "All fields are required!"
	case errors.Is(err, domain.ErrDuplicateUserID):
		return "User ID already exists!"
	case errors.Is(err, domain.ErrCompanyNotFound):
		return "Company does not exist!"
	case errors.Is(err, domain.ErrUserNotFound):
		return "User ID not found!"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "Quantity must be a positive whole number!"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid credentials!"
	default:
		return err.Error()
	}
}
