package constant

import "net/http"

type ErrorType int

const (
	Successful ErrorType = iota
	ErrInternal
	ErrNotFound
	ErrInvalidRequest
	ErrUnauthorize
	ErrInsufficientStock
	ErrUnknownProduct
	ErrInvalidQuantity
	ErrUnknownReservation
)

var ErrorTypeMessage = map[ErrorType]string{
	Successful:            "success",
	ErrInternal:           "error internal",
	ErrNotFound:           "data not found",
	ErrInvalidRequest:     "invalid request",
	ErrUnauthorize:        "unauthorize request",
	ErrInsufficientStock:  "insufficient stock",
	ErrUnknownProduct:     "product has no stock ledger entry",
	ErrInvalidQuantity:    "quantity must be a positive integer",
	ErrUnknownReservation: "reservation not found",
}

var ErrorTypeHTTPCode = map[ErrorType]int{
	Successful:            http.StatusOK,
	ErrInternal:           http.StatusInternalServerError,
	ErrNotFound:           http.StatusBadRequest,
	ErrInvalidRequest:     http.StatusBadRequest,
	ErrUnauthorize:        http.StatusUnauthorized,
	ErrInsufficientStock:  http.StatusConflict,
	ErrUnknownProduct:     http.StatusBadRequest,
	ErrInvalidQuantity:    http.StatusBadRequest,
	ErrUnknownReservation: http.StatusBadRequest,
}

var ErrorTypeCode = map[ErrorType]string{
	Successful:            "0000",
	ErrInternal:           "0001",
	ErrNotFound:           "0002",
	ErrInvalidRequest:     "0003",
	ErrUnauthorize:        "0004",
	ErrInsufficientStock:  "0005",
	ErrUnknownProduct:     "0006",
	ErrInvalidQuantity:    "0007",
	ErrUnknownReservation: "0008",
}
