// Package checks holds the check definitions docdex runs when no check
// files are configured, together with the Risor scripts they use.
package checks

import "embed"

// FS holds the definitions (*.yaml) at its root, next to the message
// scripts and modules (*.risor) they name.
//
//go:embed *.yaml *.risor
var FS embed.FS

// Pattern matches every definition in FS.
const Pattern = "*.yaml"
