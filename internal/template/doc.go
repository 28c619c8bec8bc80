// Package template renders user-supplied Go text templates over command
// output, with the sprig function library available:
//
//	apiconnect connect --template '{{ .profile }} {{ .expiresAt | date "15:04" }}'
package template
