/*
Package mind is a natural-language command interpreter for the Toodl app
surface. It parses a free-text utterance against a read-only snapshot of the
user's data and produces one structured intent: a shared expense, a budget
ledger entry, or a Flow task. Interpretation is confirm-first: every result
carries a confidence score and an editable confirmation message, and nothing
is ever executed by this package.

# Concept

The Engine combines a small statistical layer (a token-slot classifier and a
tf-idf utterance router) with three deterministic rules, one per supported
intent. The rules extract amounts, currencies, categories, dates and times
with regular expressions and lexicons, then resolve entity mentions (group
names, budget titles) against the caller-supplied snapshot. A rule that
cannot find the required evidence abstains; when every rule abstains the
response reports a failed status with a human-readable explanation rather
than a low-confidence guess.

# Key Properties

  - Pure and synchronous: no I/O, no hidden state; the only process-wide
    state is the immutable trained model loaded at startup.
  - Abstention over guessing: missing amounts, unresolvable entities, or a
    missing time-of-day produce a nil rule result, never a wrong intent.
  - Confirm-first: results carry an editable message whose template
    placeholders correspond 1:1 to its fields; edited fields can be folded
    back into the intent with ApplyOverrides before execution.

# Usage

	package main

	import (
		"encoding/json"
		"fmt"
		"log"

		"github.com/toodl-app/mind"
		"github.com/toodl-app/mind/pkg/domain"
	)

	func main() {
		eng, err := mind.New()
		if err != nil {
			log.Fatal(err)
		}

		response := eng.Handle(&domain.MindRequest{
			Utterance: "Add an expense for $20.00 gas in the 40th birthday group.",
			Snapshot: domain.MindExperienceSnapshot{
				Expenses: domain.ExpenseContext{
					Groups: []domain.ExpenseGroup{
						{ID: "g1", Name: "40th Birthday", Currency: "USD"},
					},
				},
			},
		})

		if response.Status != domain.StatusOK {
			log.Fatal(response.Error)
		}
		encoded, _ := json.MarshalIndent(response.Result, "", "  ")
		fmt.Println(string(encoded))
	}
*/
package mind
