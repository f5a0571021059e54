package command

// Code is one of the bulk error codes spec.md §4.4/§7 defines.
type Code string

const (
	CodeUnauthenticated Code = "EUNAUTHED"
	CodeInvalidCommand  Code = "EINVCMD"
	CodeBadAuth         Code = "EBADAUTH"
	CodeInvalidKey      Code = "EINVKEY"
	CodeOutOfMemory     Code = "EOOM"
	CodeDBRange         Code = "EDBRANGE"
)

// errorText returns the bulk-error payload for code: the bare code itself,
// per spec.md §4.4/§7 ("!8\r\nEDBRANGE\r\n", not a human-readable message).
// format/args are accepted so every call site can still describe the
// failure for anyone reading the source, without that detail leaking onto
// the wire.
func errorText(code Code, format string, args ...any) string {
	return string(code)
}
