package mosparotest

import (
	"net/http"

	"github.com/vitalvas/mosparo/formdata"
	"github.com/vitalvas/mosparo/formsig"
)

// Field states reported in verifiedFields.
const (
	fieldValid   = "valid"
	fieldInvalid = "invalid"
)

type verifyResponse struct {
	Valid                 bool              `json:"valid"`
	VerificationSignature string            `json:"verificationSignature,omitempty"`
	VerifiedFields        map[string]string `json:"verifiedFields"`
	Issues                []map[string]any  `json:"issues"`
}

type statisticsResponse struct {
	Result bool       `json:"result"`
	Data   Statistics `json:"data"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	body, err := formdata.ParseJSON(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: true, ErrorMessage: "Request body not valid."})
		return
	}

	req, ok := body.(formdata.Mapping)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: true, ErrorMessage: "Request body not valid."})
		return
	}

	submitToken, _ := req["submitToken"].(formdata.String)
	validationSignature, _ := req["validationSignature"].(formdata.String)
	formSignature, _ := req["formSignature"].(formdata.String)
	formData, _ := req["formData"].(formdata.Mapping)

	s.mu.Lock()
	sub, found := s.submissions[string(submitToken)]
	s.mu.Unlock()

	if !found {
		writeJSON(w, http.StatusOK, errorResponse{Error: true, ErrorMessage: "Submit token not valid."})
		return
	}

	// What the browser saw, hashed independently of the caller.
	expected := s.signer.SignSubmission(sub.FormData, sub.SubmitToken, sub.ValidationToken)

	if !formsig.Equal(string(validationSignature), expected.ValidationSignature) {
		writeJSON(w, http.StatusOK, errorResponse{Error: true, ErrorMessage: "Validation token not valid."})
		return
	}

	res := verifyResponse{
		VerifiedFields: verifyFields(expected.FormData, formData),
		Issues:         []map[string]any{},
	}

	if formData == nil || !formsig.Equal(s.signer.Hash(formdata.Serialize(formData)), string(formSignature)) {
		res.Issues = append(res.Issues, map[string]any{"message": "Form signature not valid."})
		writeJSON(w, http.StatusOK, res)
		return
	}

	for name, state := range res.VerifiedFields {
		if state == fieldInvalid {
			res.Issues = append(res.Issues, map[string]any{"name": name, "message": "Field not valid."})
		}
	}

	if sub.Spam {
		res.Issues = append(res.Issues, map[string]any{"message": "Submission is spam."})
	}

	if len(res.Issues) == 0 {
		res.Valid = true
		res.VerificationSignature = s.signer.VerificationSignature(string(validationSignature), string(formSignature))
	}

	writeJSON(w, http.StatusOK, res)
}

// verifyFields compares the top-level prepared fields the caller sent
// with those computed from the registered form.
func verifyFields(expected formdata.Value, got formdata.Mapping) map[string]string {
	fields := map[string]string{}

	want, ok := expected.(formdata.Mapping)
	if !ok {
		return fields
	}

	for _, name := range want.Keys() {
		state := fieldInvalid
		if v, ok := got[name]; ok && formdata.Serialize(v) == formdata.Serialize(want[name]) {
			state = fieldValid
		}

		fields[name] = state
	}

	return fields
}

func (s *Server) handleStatistics(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	stats := s.statistics
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, statisticsResponse{Result: true, Data: stats})
}
