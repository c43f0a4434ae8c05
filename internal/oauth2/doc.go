// Package oauth2 obtains and caches Google OAuth 2.0 access tokens for a
// service account using the JWT bearer grant (RFC 7523).
//
// # Overview
//
// An Issuer signs a short-lived RS256 assertion with the service account's
// private key, exchanges it at the token endpoint and stores the resulting
// bearer token in a single-slot Cache. Later calls reuse the cached token
// until it is within 60 seconds of its reported expiry.
//
// # Features
//
//   - One cached token per process, no persistence
//   - Safety margin of 60 seconds subtracted from expires_in
//   - Concurrent refreshes collapsed into one token endpoint call
//   - Cache cleared after any failed refresh so the next call starts over
//   - Injectable clock for expiry arithmetic
//
// # Usage
//
//	issuer, err := oauth2.NewIssuer(oauth2.IssuerConfig{
//	    ClientEmail: "proxy@my-project.iam.gserviceaccount.com",
//	    PrivateKey:  pemKey,
//	    TokenURI:    "https://oauth2.googleapis.com/token",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := issuer.GetValidAccessToken(ctx)
//	if err != nil {
//	    // errors.IsType(err, errors.ErrTypeTokenAcquisition) == true
//	}
//	req.Header.Set("Authorization", "Bearer "+token)
//
// # Thread Safety
//
// Cache and Issuer are safe for concurrent use.
package oauth2
