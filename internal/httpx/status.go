package httpx

// Status is an HTTP/1.0 status code. Only the codes this server actually
// emits are named; anything else is still a valid Status value, just
// without a canonical reason phrase below.
type Status int

const (
	StatusOK                 Status = 200
	StatusBadRequest         Status = 400
	StatusForbidden          Status = 403
	StatusNotFound           Status = 404
	StatusInternalError      Status = 500
	StatusNotImplemented     Status = 501
	StatusServiceUnavailable Status = 503
)

var reasonPhrases = map[Status]string{
	StatusOK:                 "OK",
	StatusBadRequest:         "Bad Request",
	StatusForbidden:          "Forbidden",
	StatusNotFound:           "Not Found",
	StatusInternalError:      "Internal Server Error",
	StatusNotImplemented:     "Not Implemented",
	StatusServiceUnavailable: "Service Unavailable",
}

// Reason returns the canonical reason phrase for s, or "" if s is not
// one of the statuses this server emits.
func (s Status) Reason() string {
	return reasonPhrases[s]
}
