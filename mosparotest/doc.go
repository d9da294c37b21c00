// Package mosparotest provides an in-process mosparo API for testing
// code that verifies form submissions.
//
// The server authenticates calls the way mosparo does (Basic Auth with
// the public key and an HMAC request signature), recomputes the form
// signature from the plaintext form data registered for a submit token
// and reports per-field verification states:
//
//	srv := mosparotest.NewServer(mosparotest.Config{})
//	defer srv.Close()
//
//	sub := srv.NewSubmission(formdata.Mapping{"name": formdata.String("John Example")})
//
//	c, _ := client.New(client.Config{Host: srv.URL, PublicKey: srv.PublicKey, PrivateKey: srv.PrivateKey})
//	result, err := c.VerifySubmission(ctx, sub.FormData, sub.SubmitToken, sub.ValidationToken)
package mosparotest
