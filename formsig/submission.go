package formsig

import "github.com/vitalvas/mosparo/formdata"

// Submission holds everything derived from one form submission that is
// needed to call the mosparo verification endpoint.
type Submission struct {
	SubmitToken           string
	FormData              formdata.Value
	FormSignature         string
	ValidationSignature   string
	VerificationSignature string
}

// SignSubmission prepares the form data and computes the form,
// validation and verification signatures.
func (s *Signer) SignSubmission(form formdata.Value, submitToken, validationToken string) Submission {
	prepared := formdata.Prepare(form)
	formSignature := s.Hash(formdata.Serialize(prepared))
	validationSignature := s.ValidationSignature(validationToken)

	return Submission{
		SubmitToken:           submitToken,
		FormData:              prepared,
		FormSignature:         formSignature,
		ValidationSignature:   validationSignature,
		VerificationSignature: s.VerificationSignature(validationSignature, formSignature),
	}
}

// Body returns the verification request body. Field order is fixed and
// is part of the signed text.
func (sub Submission) Body() formdata.Record {
	return formdata.Record{
		{Key: "submitToken", Value: formdata.String(sub.SubmitToken)},
		{Key: "validationSignature", Value: formdata.String(sub.ValidationSignature)},
		{Key: "formSignature", Value: formdata.String(sub.FormSignature)},
		{Key: "formData", Value: sub.FormData},
	}
}

// CheckVerification reports whether the verification signature returned
// by mosparo matches the locally computed one.
func (sub Submission) CheckVerification(signature string) bool {
	return signature != "" && Equal(signature, sub.VerificationSignature)
}
