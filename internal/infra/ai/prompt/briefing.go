package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/callprep/internal/domain/ai"
	"github.com/bryanwahyu/callprep/internal/domain/analyses"
)

const systemPrompt = `You are an expert sales and deal strategist. You prepare account executives for their next customer call.
You read raw customer interactions (emails, call transcripts) and turn them into a specific, actionable briefing.
Always quote the customer verbatim where it matters and cite the source and date of each quote.
Never invent people, numbers or commitments that are not in the material.`

const flatTemplate = `Analyze the following customer interactions for %s and create a comprehensive call preparation document.

Use exactly these markdown headings, in this order:

## TL;DR
Key takeaways, 5-7 bullet points.

## Stakeholder Map
Key people mentioned, their roles, what they care about, their concerns and exact quotes.

## Deal Status & Blockers
What is working, what is stalling, unanswered questions.

## Next Call Strategy
Primary objective, key questions to ask, proof points to provide, objections to pre-empt.

## Competitive Context
Alternatives being considered and our differentiation.

## Key Risks
Potential issues to watch.

Be specific and actionable. Reference exact quotes and dates when available.

Customer interactions:
%s`

const fivePartTemplate = `Analyze the following customer interactions for %s and write a strategic briefing for the next sales call.

Use exactly these markdown headings, in this order:

## PART 1: STAKEHOLDER MAP
For every person: role, formal authority, real influence, what they personally care about, their
emotional stance towards the deal, and their most revealing quote with source and date.

## PART 2: DEAL PHYSICS
Deal status, momentum, blockers, decision process and timeline, budget signals,
unanswered questions, competitive alternatives being considered.

## PART 3: CLOSE PLAN
Primary objective of the next call, the questions to ask, proof points to bring,
objections to pre-empt, and the concrete next steps to propose.

## PART 4: POSITIONING STRATEGY
How to frame our solution for each stakeholder, the differentiation that matters to them,
language to use and language to avoid.

## PART 5: EXECUTIVE DIGEST
5-7 bullet points a busy executive can read in thirty seconds, ending with the key risks.

Customer interactions:
%s`

// GetSystemPrompt is the fixed strategist role shared by every schema.
func GetSystemPrompt() string {
	return systemPrompt
}

// GetUserPrompt embeds the bundle verbatim under the heading layout of schema.
func GetUserPrompt(schema analyses.Schema, customerName, bundle string) string {
	name := strings.TrimSpace(customerName)
	if name == "" {
		name = "this customer"
	}
	switch schema {
	case analyses.SchemaFlat:
		return fmt.Sprintf(flatTemplate, name, bundle)
	default:
		return fmt.Sprintf(fivePartTemplate, name, bundle)
	}
}

// Briefing builds the full chat prompt.
func Briefing(schema analyses.Schema, customerName, bundle string) ai.Prompt {
	return ai.Prompt{
		System: GetSystemPrompt(),
		User:   GetUserPrompt(schema, customerName, bundle),
	}
}
