package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Status is one entry of the closed response status table.
// Name and Code are stable identifiers; Message is for humans only.
type Status struct {
	Name      string
	IsSuccess bool
	Code      int
	Message   string
}

func (s Status) String() string {
	return s.Name
}

var (
	Success = Status{"SUCCESS", true, http.StatusOK, "요청에 성공하였습니다."}

	// 4xx
	NoAuth             = Status{"NO_AUTH", false, http.StatusUnauthorized, "권한이 없습니다."}
	NotMatchPassword   = Status{"NOT_MATCH_PASSWORD", false, http.StatusUnauthorized, "비밀번호가 일치하지 않습니다."}
	ExistEmail         = Status{"EXIST_EMAIL", false, http.StatusConflict, "이미 존재하는 회원입니다."}
	NonExistUser       = Status{"NON_EXIST_USER", false, http.StatusNotFound, "존재하지 않는 회원입니다."}
	NonExistArticle    = Status{"NON_EXIST_ARTICLE", false, http.StatusNotFound, "존재하지 않는 게시글입니다."}
	NoJWT              = Status{"NO_JWT", false, http.StatusBadRequest, "JWT 토큰이 존재하지 않습니다."}
	InvalidToken       = Status{"INVALID_TOKEN", false, http.StatusBadRequest, "유효하지 않은 토큰입니다"}
	ExpiredToken       = Status{"EXPIRED_TOKEN", false, http.StatusBadRequest, "만료된 토큰입니다."}
	ContextLengthError = Status{"CONTEXT_LENGTH_ERROR", false, http.StatusBadRequest, "내용은 0자 이상 500자 이하까지 입력할 수 있습니다"}
	NoSessionID        = Status{"NO_SESSION_ID", false, http.StatusBadRequest, "세션아이디가 존재하지 않습니다."}
	InvalidRequest     = Status{"INVALID_REQUEST", false, http.StatusBadRequest, "잘못된 요청입니다."}

	// 5xx
	DatabaseInsertError     = Status{"DATABASE_INSERT_ERROR", false, http.StatusInternalServerError, "데이터베이스 저장에 실패하였습니다"}
	DatabaseSelectError     = Status{"DATABASE_SELECT_ERROR", false, http.StatusInternalServerError, "데이터베이스 조회에 실패하였습니다."}
	DatabaseUpdateError     = Status{"DATABASE_UPDATE_ERROR", false, http.StatusInternalServerError, "데이터베이스 수정에 실패하였습니다."}
	DatabaseDeleteError     = Status{"DATABASE_DELETE_ERROR", false, http.StatusInternalServerError, "데이터베이스 삭제에 실패하였습니다."}
	PasswordEncryptionError = Status{"PASSWORD_ENCRYPTION_ERROR", false, http.StatusInternalServerError, "비밀번호 암호화에 실패하였습니다."}
	InternalServerError     = Status{"INTERNAL_SERVER_ERROR", false, http.StatusInternalServerError, "서버 내부 오류가 발생하였습니다."}
)

// Statuses lists every entry of the table.
var Statuses = []Status{
	Success,
	NoAuth, NotMatchPassword, ExistEmail, NonExistUser, NonExistArticle,
	NoJWT, InvalidToken, ExpiredToken, ContextLengthError, NoSessionID, InvalidRequest,
	DatabaseInsertError, DatabaseSelectError, DatabaseUpdateError, DatabaseDeleteError,
	PasswordEncryptionError, InternalServerError,
}

// DomainError carries exactly one Status. Err is kept for logs and never
// reaches the response body.
type DomainError struct {
	Status Status
	Err    error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Status.Name, e.Err)
	}
	return e.Status.Name
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// New constructs a DomainError for the status.
func New(status Status) *DomainError {
	return &DomainError{Status: status}
}

// Wrap attaches a cause to the status.
func Wrap(status Status, err error) *DomainError {
	return &DomainError{Status: status, Err: err}
}

// Is reports whether err carries the given status.
func Is(err error, status Status) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status.Name == status.Name
	}
	return false
}

// ToDomainError converts generic errors to DomainError. Callers that talk to
// storage wrap into the DATABASE_* family themselves; anything still
// unclassified at this point is reported as INTERNAL_SERVER_ERROR.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return Wrap(InternalServerError, err)
}
