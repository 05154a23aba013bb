// Package httpclient is the HTTP collaborator behind every apihelper client.
//
// Doer is the single seam the request pipeline depends on. Adapter is the
// net/http implementation: it never follows redirects, never turns HTTP
// status codes into errors, applies per-request timeouts and proxies, and
// reports only network failures as errors.
//
//	adapter, err := httpclient.New(httpclient.Config{Timeout: 10 * time.Second})
//	resp, err := adapter.Do(ctx, &httpclient.Request{
//	    Method: http.MethodGet,
//	    URL:    "https://api.vk.com/method/users.get",
//	    Query:  url.Values{"user_ids": {"1"}},
//	})
//
// Default returns a process-wide Adapter created on first use.
package httpclient
