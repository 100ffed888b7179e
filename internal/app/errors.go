package app

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrBotNotFound          = errors.New("bot not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrSquadNotFound        = errors.New("squad not found")
	ErrForbidden            = errors.New("permission denied")
	ErrAIService            = errors.New("ai service error")
)
