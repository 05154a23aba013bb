// Package logger provides structured logging on top of zerolog.
//
// Clients log through a component-tagged Logger; when no logger is supplied
// they use Nop(), which discards everything.
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "json"}, "apihelper")
//	log.WithComponent("apihelper.vk").Info("token refreshed", logger.Fields("account_id", id))
package logger
