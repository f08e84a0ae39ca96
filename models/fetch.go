package models

// FetchOutcome is what the guarded fetcher hands to the parser: the capped
// body plus the transport facts the assembler reports back to the caller.
type FetchOutcome struct {
	Body        []byte
	ContentType string // media type without parameters, e.g. "text/html"
	FinalURL    string // URL after redirects
	StatusCode  int
}
