// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

// GateDecision is the publish-flow advice derived from an audit score.
type GateDecision int

const (
	// GateAllow lets the save proceed.
	GateAllow GateDecision = iota
	// GateConfirm requires the author to explicitly confirm publishing
	// despite a mediocre score.
	GateConfirm
	// GateBlock refuses to publish until the score improves.
	GateBlock
)

// String implements fmt.Stringer.
func (d GateDecision) String() string {
	switch d {
	case GateConfirm:
		return "confirm"
	case GateBlock:
		return "block"
	default:
		return "allow"
	}
}

// GateForPublish maps an audit score to a publish decision. The gate
// applies only when the post is being published: drafts always save
// regardless of score.
func GateForPublish(publishing bool, score int) GateDecision {
	if !publishing {
		return GateAllow
	}
	switch {
	case score < scoreFair:
		return GateBlock
	case score < scoreGood:
		return GateConfirm
	default:
		return GateAllow
	}
}
