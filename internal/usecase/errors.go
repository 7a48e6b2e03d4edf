package usecase

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Shreyr69/indiport/internal/domain/checkout"
)

type HTTPError struct {
	Status  int
	Message string
	//元のエラー（errors.Is で判定できるように残す）
	Err error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.Err }

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func wrapHTTPError(status int, message string, err error) error {
	return &HTTPError{Status: status, Message: message, Err: err}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// チェックアウトのエラー種別を status に変換する
func checkoutError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsHTTPError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, checkout.ErrValidation):
		return wrapHTTPError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, checkout.ErrEmptyCart):
		return wrapHTTPError(http.StatusBadRequest, "cart is empty", err)
	case errors.Is(err, checkout.ErrTermsNotAccepted):
		return wrapHTTPError(http.StatusBadRequest, "please accept the terms and conditions", err)
	case errors.Is(err, checkout.ErrStepOrder):
		return wrapHTTPError(http.StatusConflict, "checkout step out of order", err)
	case errors.Is(err, checkout.ErrBusy):
		return wrapHTTPError(http.StatusConflict, "order placement already in progress", err)
	case errors.Is(err, checkout.ErrSessionNotFound):
		return wrapHTTPError(http.StatusNotFound, "checkout not found", err)
	case errors.Is(err, checkout.ErrRemoteFetch):
		return wrapHTTPError(http.StatusServiceUnavailable, "could not load checkout data, please retry", err)
	case errors.Is(err, checkout.ErrPaymentGateway):
		return wrapHTTPError(http.StatusBadGateway, "payment gateway unavailable, please retry", err)
	case errors.Is(err, checkout.ErrPaymentVerification):
		return wrapHTTPError(http.StatusBadRequest, "payment verification failed, please contact support", err)
	case errors.Is(err, checkout.ErrOrderPersistence):
		return wrapHTTPError(http.StatusInternalServerError, "order could not be saved, please contact support", err)
	}
	return wrapHTTPError(http.StatusInternalServerError, "internal error", err)
}
