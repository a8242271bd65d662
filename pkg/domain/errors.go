package domain

import "errors"

// ErrModelMissing is returned when a model artifact cannot be found at startup.
var ErrModelMissing = errors.New("model artifact missing")

// ErrModelMalformed is returned when a model artifact fails to parse or is
// internally inconsistent (for example, a weight row of the wrong width).
var ErrModelMalformed = errors.New("model artifact malformed")

// ErrUnknownTool is returned when an intent names a tool this interpreter
// does not support.
var ErrUnknownTool = errors.New("unknown tool")

// ErrMessageMismatch is returned when an editable message's template
// placeholders and fields disagree.
var ErrMessageMismatch = errors.New("editable message mismatch")

// ErrEmptyUtterance is returned by the serving layer when a request carries
// no utterance text.
var ErrEmptyUtterance = errors.New("empty utterance")

// ErrCacheMiss is returned by the response cache when a request has no
// cached interpretation.
var ErrCacheMiss = errors.New("response not cached")
