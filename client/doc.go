// Package client is a mosparo API client.
//
// It verifies form submissions against a mosparo installation and reads
// project statistics. Every call is authenticated with the project public
// key and an HMAC request signature; form values themselves never leave
// the server, only their hashes.
//
// # Verifying a submission
//
//	c, err := client.New(client.Config{
//	    Host:       "https://mosparo.example.com",
//	    PublicKey:  publicKey,
//	    PrivateKey: privateKey,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	form, err := formdata.FromAny(submitted) // map[string]any from the request
//	...
//	result, err := c.VerifySubmission(ctx, form.(formdata.Mapping), "", "")
//	switch {
//	case errors.Is(err, client.ErrConfiguration):
//	    // tokens missing from the form
//	case err != nil:
//	    // mosparo unreachable or answered garbage
//	case !result.IsSubmittable():
//	    // spam or tampered data, see result.Issues()
//	}
//
// # Statistics
//
//	stats, err := c.StatisticByDate(ctx, client.StatisticQuery{Range: 7 * 24 * time.Hour})
//
// # Errors
//
// Errors wrap one of ErrConfiguration, ErrTransport or ErrRemote. Nothing
// is retried.
package client
