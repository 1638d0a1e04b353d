// Package domain holds the error taxonomy shared by the trails engine and
// its registry.
//
// Sentinels are matched with errors.Is. The two typed errors carry the
// plugin that failed and are matched with errors.As:
//
//   - [PluginValidationError]: a plugin was rejected at registration
//   - [PluginLifecycleError]: a plugin phase returned an error
package domain
