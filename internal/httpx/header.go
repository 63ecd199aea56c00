package httpx

// Header is the HTTP header model from spec.md §3: an ordered-by-
// first-insertion mapping from header name to header value, with
// case-sensitive keys stored exactly as received and a single value per
// name (re-setting an existing name replaces its value in place without
// moving it in iteration order). This mirrors the original's
// std::map<std::string,std::string>-backed HttpMessage, reimplemented
// with insertion order instead of sorted-key order per spec.md §3's
// explicit data model.
type Header struct {
	order []string
	vals  map[string]string
}

// NewHeader returns an empty Header ready for use.
func NewHeader() Header {
	return Header{vals: make(map[string]string)}
}

// Set stores value under key, preserving key's original position in
// iteration order if it was already present. There is no multi-value
// Add: spec.md §3 allows only a single value per header name.
func (h *Header) Set(key, value string) {
	if h.vals == nil {
		h.vals = make(map[string]string)
	}
	if _, exists := h.vals[key]; !exists {
		h.order = append(h.order, key)
	}
	h.vals[key] = value
}

// Add is an alias for Set, kept for the request parser's call site: the
// original scanner also simply overwrites on a repeated header name.
func (h *Header) Add(key, value string) { h.Set(key, value) }

// Get returns the value stored for key, or "" if key was never set.
// Lookup is case-sensitive, matching the original's exact-key map
// access (e.g. cgihandler.cpp's optional(headers, "Referer")).
func (h Header) Get(key string) string { return h.vals[key] }

// Keys returns header names in first-insertion order, the order
// Serialize emits them in.
func (h Header) Keys() []string { return h.order }

// Len reports how many distinct header names are set.
func (h Header) Len() int { return len(h.vals) }
