// Package providers contains the adapters for the supported services and a
// registry that builds clients by provider name.
//
//	c, err := providers.Default().NewOAuth2Client("vk", cfg, client.WithLogger(log))
//	url := c.AuthorizationURL(state, nil)
//
// Each adapter is a stateless strategy: URLs, request signing and error
// envelopes. Token state lives in the client.
package providers
