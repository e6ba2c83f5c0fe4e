// Package config defines the explicit configuration object for the
// email-ai-agent application and the account registry derived from it.
//
// Configuration is loaded once (optional YAML file plus environment
// variables, with the environment taking precedence) and passed into each
// component at construction. Components never read the process environment
// themselves, which keeps unit tests deterministic.
//
// The account registry maps small integer slots (1..MaxAccounts) to mailbox
// refresh tokens. A slot is "configured" when its token is present; the set
// of configured slots is recomputed on every call rather than cached.
package config
