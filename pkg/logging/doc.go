// Package logging provides subsystem-tagged structured logging for
// apiconnect, built on log/slog.
//
// Every entry carries a subsystem attribute so output can be filtered by
// component:
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Connection", "token exchange against %s", tokenURL)
//	logging.Debug("TLSClient", "loaded %d certificates", n)
//	logging.Warn("Connection", "unexpected status %d", code)
//	logging.Error("Config", err, "failed to load profile %s", name)
//
// # Subsystems
//
//   - Config: profile file loading and schema checks
//   - Validator: configuration validation
//   - TLSClient: key store loading and HTTP client provisioning
//   - Connection: token exchange and lifecycle
//   - Callback: authorization redirect receiver
//   - CLI: command execution
//
// Components that take an injected *slog.Logger receive one from For, so
// they share the handler and level configured here.
//
// Secrets (client secrets, passwords, tokens) are never passed to the
// logger unmasked.
package logging
