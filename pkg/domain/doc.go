/*
Package domain contains the core contracts of the Mind interpreter.

It defines the value types that flow through one interpretation: token spans
and predictions, decoded slots, the read-only experience snapshot, the
tagged-union Intent, editable confirmation messages, and the request/response
envelope. This package is kept pure and free of I/O, following Hexagonal
Architecture principles.

# Key Entities

  - TokenSpan / TokenPrediction: tokenizer and slot-classifier output.
  - MindExperienceSnapshot: caller-supplied view of the user's data, the sole
    source of entity-resolution truth.
  - Intent: a discriminated union keyed by Tool, one payload per action.
  - RuleResult: a structured intent plus confidence and confirmation message.
  - MindRequest / MindResponse: the orchestrator boundary contract.
*/
package domain
