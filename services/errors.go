package services

import "net/http"

// Error is a business-rule failure with a stable, user-safe message.
// Handlers map Status straight onto the HTTP response; anything that
// is not an *Error is treated as an internal failure.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrTeamNotFound           = &Error{Status: http.StatusNotFound, Message: "Team not found"}
	ErrTeamMemberNotFound     = &Error{Status: http.StatusNotFound, Message: "Team member not found"}
	ErrJoinRequestNotFound    = &Error{Status: http.StatusNotFound, Message: "Join request not found"}
	ErrUnauthorizedTeamAccess = &Error{Status: http.StatusForbidden, Message: "Unauthorized team access"}
	ErrTeamDeactivated        = &Error{Status: http.StatusForbidden, Message: "Team is deactivated"}
	ErrTeamAlreadyExists      = &Error{Status: http.StatusConflict, Message: "Team with this code already exists"}
	ErrDuplicateJoinRequest   = &Error{Status: http.StatusConflict, Message: "A pending join request already exists"}
	ErrUserAlreadyMember      = &Error{Status: http.StatusConflict, Message: "User is already a member of this team"}
	ErrInvalidTeamCode        = &Error{Status: http.StatusBadRequest, Message: "Invalid team code"}
	ErrCannotModifyOwner      = &Error{Status: http.StatusBadRequest, Message: "Cannot modify the team owner"}
	ErrInvalidReviewAction    = &Error{Status: http.StatusBadRequest, Message: "Action must be APPROVED or DECLINED"}
)
