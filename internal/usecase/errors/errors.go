package errors

import "errors"

// Live session errors
var (
	ErrSessionNotLive    = errors.New("interview session is not live")
	ErrSessionBusy       = errors.New("interview session event queue is full")
	ErrUnknownEventType  = errors.New("unknown interview event type")
	ErrStreamAlreadyOpen = errors.New("interview stream already attached")
)

// Finalize errors
var (
	ErrNoCredential        = errors.New("no scoring credential resolvable for tenant")
	ErrNothingScorable     = errors.New("no transcript and no live evaluations to score")
	ErrInterviewIncomplete = errors.New("not enough answered questions")
	ErrFinalizeInProgress  = errors.New("interview finalize already in progress")
)
