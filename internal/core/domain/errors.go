package domain

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is closed for voting")
	ErrInvalidOption   = errors.New("invalid option for this session")
	ErrVoteNotFound    = errors.New("device has not voted in this session")
	ErrInternal        = errors.New("internal server error")
)
