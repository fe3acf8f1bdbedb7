package convert

import _ "embed"

// standardRules is the built-in rule set legislated before any
// user-supplied rules. It lives in a sidecar file because the rule
// syntax uses backticks and literal placeholder markers freely.
//
//go:embed standard_rules.cmd
var standardRules string
