// Package formsig implements the mosparo HMAC-SHA256 signature scheme.
//
// Every signature is the lowercase hex HMAC-SHA256 of a UTF-8 string,
// keyed by the project private key. Four signatures are derived per
// verification:
//
//	formSignature         = HMAC(serialize(prepare(formData)))
//	validationSignature   = HMAC(validationToken)
//	verificationSignature = HMAC(validationSignature + formSignature)
//	requestSignature      = HMAC(path + serialize(body))
//
// The request signature is sent as the Basic Auth password with the
// public key as user name.
//
//	signer := formsig.NewSigner(publicKey, privateKey)
//	sub := signer.SignSubmission(form, submitToken, validationToken)
//	requestSignature := signer.RequestSignature("/api/v1/verification/verify", sub.Body())
package formsig
