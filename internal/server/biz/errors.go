package biz

import "errors"

var (
	ErrAnnotationNotFound = errors.New("annotation not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAuthClientNotFound = errors.New("auth client not found")
	ErrInvalidAuthClient  = errors.New("invalid auth client")
	ErrInvalidJWT         = errors.New("invalid jwt token")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrFlagOwnAnnotation  = errors.New("cannot flag own annotation")
)
