package sas

import "errors"

var (
	ErrSchemaFetchFailed  = errors.New("failed to fetch schema")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidAccountData = errors.New("unexpected account data")
	ErrSchemaPaused       = errors.New("schema is paused")
)
