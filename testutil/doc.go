// Package testutil provides test doubles for code built on httpclient.Doer.
//
//	doer := testutil.NewMockDoer(testutil.JSONResponse(200, `{"id":"1"}`))
//	c, _ := client.New(p, cfg, client.WithDoer(doer))
//	...
//	if doer.CallCount() != 1 { t.Fatal("expected one call") }
package testutil
