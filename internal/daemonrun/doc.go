// Package daemonrun wires configuration, storage, and the stage runners into
// HTTP servers and keeps them running until shutdown. Both the discflightd
// binary and the `discflight serve` command start through Run.
package daemonrun
