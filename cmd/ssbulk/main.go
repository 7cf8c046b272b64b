// Command ssbulk bulk-edits one parameter of Splunk saved searches in an app.
//
// Usage:
//
//	ssbulk --app SA-AccessProtection --parameter description --value "Reviewed 2026-Q3"
//	ssbulk --app SA-AccessProtection --parameter action.correlationsearch.annotations \
//	    --json-dico --key mitre_attack --append --value T1110 T1078
//
// The password is prompted on the terminal, or read as one line from stdin.
//
// Env vars:
//
//	ENV  profile and logger flavour: local (default), dev, prod
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
