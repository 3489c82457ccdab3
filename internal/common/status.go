package common

import (
	"errors"
	"net/http"
)

// StatusError is a business failure that the transport layer renders as a
// user-presentable status. Each kind is a package-level sentinel so callers
// can match it with errors.Is.
type StatusError struct {
	// Code is the stable machine-readable identifier of the failure kind.
	Code string
	// HTTPStatus is the status the REST layer responds with.
	HTTPStatus int
	// Message is shown to the end user.
	Message string
}

func (e *StatusError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	ErrDuplicatedMembers      = &StatusError{Code: "DUPLICATED_MEMBERS", HTTPStatus: http.StatusConflict, Message: "member already registered"}
	ErrBlacklistMember        = &StatusError{Code: "BLACKLIST_MEMBER", HTTPStatus: http.StatusForbidden, Message: "member is permanently banned"}
	ErrDeleteMember           = &StatusError{Code: "DELETE_MEMBER", HTTPStatus: http.StatusForbidden, Message: "member has withdrawn"}
	ErrNotExistMember         = &StatusError{Code: "NOT_EXIST_MEMBER", HTTPStatus: http.StatusNotFound, Message: "member does not exist"}
	ErrNotExistProfile        = &StatusError{Code: "NOT_EXIST_PROFILE", HTTPStatus: http.StatusNotFound, Message: "profile does not exist"}
	ErrMainProfileImageDelete = &StatusError{Code: "MAIN_PROFILE_IMAGE_DELETE", HTTPStatus: http.StatusBadRequest, Message: "main profile image cannot be deleted"}

	ErrDuplicatedNickname     = &StatusError{Code: "DUPLICATED_NICKNAME", HTTPStatus: http.StatusConflict, Message: "nickname already in use"}
	ErrNotExistProfileImage   = &StatusError{Code: "NOT_EXIST_PROFILE_IMAGE", HTTPStatus: http.StatusNotFound, Message: "profile image does not exist"}
	ErrDuplicatedProfileImage = &StatusError{Code: "DUPLICATED_PROFILE_IMAGE", HTTPStatus: http.StatusConflict, Message: "profile image already added"}
	ErrInvalidProfileImages   = &StatusError{Code: "INVALID_PROFILE_IMAGES", HTTPStatus: http.StatusBadRequest, Message: "invalid profile image list"}
	ErrInvalidRequest         = &StatusError{Code: "INVALID_REQUEST", HTTPStatus: http.StatusBadRequest, Message: "invalid request"}
	ErrUnauthorizedRequest    = &StatusError{Code: "UNAUTHORIZED", HTTPStatus: http.StatusUnauthorized, Message: "authentication required"}
	ErrInternalServer         = &StatusError{Code: "INTERNAL_SERVER_ERROR", HTTPStatus: http.StatusInternalServerError, Message: "internal server error"}
)

// AsStatus extracts the StatusError carried by err. Anything else is reported
// as ErrInternalServer.
func AsStatus(err error) *StatusError {
	var se *StatusError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, ErrorUnauthorized) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired) {
		return ErrUnauthorizedRequest
	}
	return ErrInternalServer
}
