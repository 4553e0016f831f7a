package regen

import "doc-assistant-gw/pkg/session"

// FeedbackReason is the structured explanation attached to a negative
// rating.
type FeedbackReason string

const (
	ReasonNotRelevant         FeedbackReason = "not_relevant"
	ReasonNotFactuallyCorrect FeedbackReason = "not_factually_correct"
	ReasonIncomplete          FeedbackReason = "incomplete"
	ReasonMissing             FeedbackReason = "missing"
	ReasonTooGeneral          FeedbackReason = "too_general"
	ReasonComplexTopic        FeedbackReason = "complex_topic"
	ReasonTechnicalIssue      FeedbackReason = "technical_issue"
)

// recommendedModes maps each feedback reason to the retrieval strategy most
// likely to fix that class of answer. Reasons without an entry
// (technical_issue) never trigger regeneration.
var recommendedModes = map[FeedbackReason]session.SearchMode{
	ReasonNotRelevant:         session.ModeRephrase,
	ReasonNotFactuallyCorrect: session.ModeRephrase,
	ReasonTooGeneral:          session.ModeRephrase,
	ReasonIncomplete:          session.ModeMultipleQueries,
	ReasonMissing:             session.ModeMultipleQueries,
	ReasonComplexTopic:        session.ModeMultipleQueries,
}

// RecommendedMode returns the search mode to regenerate with, if the reason
// has one.
func RecommendedMode(reason FeedbackReason) (session.SearchMode, bool) {
	mode, ok := recommendedModes[reason]
	return mode, ok
}
