package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/dmitrijs2005/spacestar/internal/logging"
)

const (
	successCode    = "SUCCESS"
	successMessage = "요청에 성공하였습니다."
)

// envelope is the body of every API response.
type envelope struct {
	IsSuccess bool   `json:"isSuccess"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Result    any    `json:"result,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, status int, result any) {
	writeJSON(w, status, envelope{IsSuccess: true, Code: successCode, Message: successMessage, Result: result})
}

func writeStatus(w http.ResponseWriter, st *common.StatusError) {
	writeJSON(w, st.HTTPStatus, envelope{Code: st.Code, Message: st.Message})
}

// writeError renders err as its status kind. Unclassified errors are logged
// and reported as INTERNAL_SERVER_ERROR.
func writeError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	st := common.AsStatus(err)
	if st == common.ErrInternalServer && !errors.Is(err, common.ErrInternalServer) {
		log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeStatus(w, st)
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, envelope{Code: "TOO_MANY_REQUESTS", Message: "too many requests"})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return common.ErrInvalidRequest
	}
	return nil
}
