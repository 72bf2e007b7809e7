package util

var ErrInvalid = NewError("invalid")
