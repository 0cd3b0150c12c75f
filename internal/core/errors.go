package core

import (
	"errors"
	"strings"
)

// ErrorKind classifies why a docsctl operation failed.
type ErrorKind int

const (
	// KindUnknown is an unclassified failure.
	KindUnknown ErrorKind = iota
	// KindMissingManifest means the dependency manifest does not exist.
	KindMissingManifest
	// KindToolNotFound means a command is not resolvable after provisioning.
	KindToolNotFound
	// KindDownloadUnavailable means no download transport can be used.
	KindDownloadUnavailable
	// KindDownloadFailed means the transport reported a failed download.
	KindDownloadFailed
	// KindBinaryNotFoundInArchive means the extracted release has no matching binary.
	KindBinaryNotFoundInArchive
	// KindInstallationIncomplete means the tool is still unavailable after install.
	KindInstallationIncomplete
	// KindToolNotRunnable means the tool failed its --version probe.
	KindToolNotRunnable
	// KindUnknownCommand means the top-level command is missing or unrecognised.
	KindUnknownCommand
	// KindUnknownFlag means a command received a flag it does not accept.
	KindUnknownFlag
	// KindLintFindings means the linter ran and reported problems.
	KindLintFindings
	// KindCommandFailed means an external command exited with a non-zero status.
	KindCommandFailed
	// KindInvalidConfig means the overrides file could not be used.
	KindInvalidConfig
)

// String returns a human-readable label for the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindMissingManifest:
		return "missing manifest"
	case KindToolNotFound:
		return "tool not found"
	case KindDownloadUnavailable:
		return "download unavailable"
	case KindDownloadFailed:
		return "download failed"
	case KindBinaryNotFoundInArchive:
		return "binary not found in archive"
	case KindInstallationIncomplete:
		return "installation incomplete"
	case KindToolNotRunnable:
		return "tool not runnable"
	case KindUnknownCommand:
		return "unknown command"
	case KindUnknownFlag:
		return "unknown flag"
	case KindLintFindings:
		return "lint findings"
	case KindCommandFailed:
		return "command failed"
	case KindInvalidConfig:
		return "invalid config"
	default:
		return "unknown error"
	}
}

// Error is the structured error returned by every docsctl workflow step.
// Subject names the thing the step was acting on (a file, a tool, a URL).
type Error struct {
	Kind    ErrorKind
	Subject string
	Detail  string
	Err     error
}

// Sentinels for errors.Is. Any *Error of the same kind matches.
var (
	ErrMissingManifest         = &Error{Kind: KindMissingManifest}
	ErrToolNotFound            = &Error{Kind: KindToolNotFound}
	ErrDownloadUnavailable     = &Error{Kind: KindDownloadUnavailable}
	ErrDownloadFailed          = &Error{Kind: KindDownloadFailed}
	ErrBinaryNotFoundInArchive = &Error{Kind: KindBinaryNotFoundInArchive}
	ErrInstallationIncomplete  = &Error{Kind: KindInstallationIncomplete}
	ErrToolNotRunnable         = &Error{Kind: KindToolNotRunnable}
	ErrUnknownCommand          = &Error{Kind: KindUnknownCommand}
	ErrUnknownFlag             = &Error{Kind: KindUnknownFlag}
	ErrLintFindings            = &Error{Kind: KindLintFindings}
	ErrCommandFailed           = &Error{Kind: KindCommandFailed}
	ErrInvalidConfig           = &Error{Kind: KindInvalidConfig}
)

// Error implements the error interface.
func (e *Error) Error() string {
	parts := []string{e.Kind.String()}
	if e.Subject != "" {
		parts = append(parts, e.Subject)
	}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
