package service

import "errors"

var (
	ErrTitleRequired      = errors.New("title cannot be empty")
	ErrColumnNotFound     = errors.New("column not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrBoardNotFound      = errors.New("board not found")
	ErrInvalidDueDate     = errors.New("due date is not a valid date")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found or expired")
)
