package domain

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAlreadyExists       = errors.New("token already exists")
	ErrUnknownToken        = errors.New("unknown token")
	ErrNotOwner            = errors.New("not the token owner")
	ErrInvalidDestination  = errors.New("invalid destination")
	ErrAlreadyVoted        = errors.New("confirmation already cast")
	ErrEscrowNotClosed     = errors.New("escrow not closed")
	ErrEscrowRejected      = errors.New("escrow rejected")
	ErrBadSignature        = errors.New("bad signature")
	ErrInvalidTable        = errors.New("invalid royalty table")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrMalformedRequest    = errors.New("malformed request")
)
