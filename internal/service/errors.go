package service

import "errors"

var (
	ErrTextNotFound        = errors.New("text not found")
	ErrFolderNotFound      = errors.New("folder not found")
	ErrParentNotFound      = errors.New("parent folder not found")
	ErrFolderCycle         = errors.New("folder cannot be moved under itself")
	ErrContentTooLarge     = errors.New("content exceeds the token window")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)
