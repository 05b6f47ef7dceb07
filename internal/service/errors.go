package service

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist or does
	// not belong to the requesting user.
	ErrNotFound = errors.New("record not found")

	// ErrChallengeNotActive rejects trading operations on passed, failed or
	// unpaid challenges.
	ErrChallengeNotActive = errors.New("challenge is not active")

	// ErrPriceUnavailable signals that no upstream could supply a price for
	// the symbol. Fatal for trade execution, which needs an entry price.
	ErrPriceUnavailable = errors.New("price unavailable for symbol")

	// ErrPositionAlreadyClosed rejects a second close on the same position.
	ErrPositionAlreadyClosed = errors.New("position already closed")

	// ErrInvalidExitPrice rejects close requests whose exit price is not a
	// finite positive number.
	ErrInvalidExitPrice = errors.New("exit price must be a finite positive number")

	// ErrInvalidQuantity rejects trades with a non-positive quantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrCorruptChallenge flags a challenge whose initial balance is not
	// positive. Creation-time validation should make this unreachable; if it
	// shows up the request is failed outright rather than coerced.
	ErrCorruptChallenge = errors.New("challenge has non-positive initial balance")

	// ErrEmailTaken is returned on registration with an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPaymentNotPending rejects confirmation of an already settled payment.
	ErrPaymentNotPending = errors.New("payment is not pending")
)
