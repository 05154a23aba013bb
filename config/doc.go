// Package config loads apihelper configuration.
//
// Load merges a YAML file, an optional .env file and APIHELPER_ environment
// variables into any struct with mapstructure tags using viper. AppConfig is
// the standard layout consumed by the apihelper command: shared transport
// settings, one client.Config per provider, snapshot storage and telemetry.
//
// # Usage
//
//	cfg, err := config.LoadApp(config.WithConfigFile("apihelper.yml"))
//
// Environment variables name nested keys with underscores:
// APIHELPER_PROVIDERS_VK_CLIENT_SECRET sets providers.vk.client_secret.
package config
