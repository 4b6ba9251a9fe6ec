package model

import "time"

// CorrectionRule records a human correction of a misclassified line.
// The key is the normalized raw text, so an identical future phrase
// resolves deterministically before any stem matching runs.  Newer
// corrections for the same key overwrite older ones.
//
// Fields:
//  Key             – normalized raw text.
//  RawText         – original text as submitted.
//  PredictedItemID – what the matcher guessed, empty when unclassified.
//  CorrectedItemID – the menu item the human chose.
//  CreatedAt       – capture timestamp (last write wins).
type CorrectionRule struct {
	Key             string    `json:"key"`
	RawText         string    `json:"raw_text"`
	PredictedItemID string    `json:"predicted_item_id,omitempty"`
	CorrectedItemID string    `json:"corrected_item_id"`
	CreatedAt       time.Time `json:"created_at"`
}
