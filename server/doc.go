// Package server runs the loopback HTTP listener that receives OAuth2
// authorization redirects.
//
// The listener is a Gin engine bound to an ephemeral local port by default.
// It accepts exactly one redirect whose state parameter matches the value
// generated for the login attempt and hands the code (or the provider's
// error) to Wait.
//
//	srv := server.New(server.Config{}, state, log)
//	if err := srv.Start(ctx); err != nil { ... }
//	defer srv.Stop(ctx)
//	cb, err := srv.Wait(ctx)
package server
