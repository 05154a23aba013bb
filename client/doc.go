// Package client implements the provider-agnostic request pipeline and the
// OAuth2 authorization/token lifecycle shared by every apihelper adapter.
//
// A Client pairs a Provider (the per-network strategy: URLs, parameter
// preparation, error envelope) with a transport (httpclient.Doer). Each call
// goes through the same steps:
//
//  1. the provider prepares the parameters
//  2. GET parameters become the query string, POST parameters a form body
//  3. the request is paced by the QPS throttler and sent
//  4. the response is classified by status and Content-Type
//  5. JSON is decoded and the provider checks it for an error envelope
//
// OAuth2Client adds authorization URLs, code exchange, refresh and token state
// on top of Client.
//
//	fb, err := client.NewOAuth2(providers.NewFacebook(), client.Config{
//	    ClientID:     "id",
//	    ClientSecret: "secret",
//	    Scope:        []string{"email"},
//	})
//	http.Redirect(w, r, fb.AuthorizationURL(state, nil), http.StatusFound)
//	...
//	if _, err := fb.Authorize(ctx, code, nil); err != nil { ... }
//	me, err := fb.Get(ctx, "me", nil)
package client
