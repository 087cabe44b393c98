package locality

import (
	"context"

	"ecalab/internal/automaton"
	"ecalab/internal/survey"
)

const (
	SurveyTrials    = 5
	SurveyMaxRadius = 2
)

// Bucket groups rules by inferred radius; a rule with no consistent radius counts as
// above one.
type Bucket int

const (
	BucketZero Bucket = iota
	BucketOne
	BucketAbove
)

func (b Bucket) String() string {
	switch b {
	case BucketZero:
		return "radius 0"
	case BucketOne:
		return "radius 1"
	default:
		return "radius >1"
	}
}

func bucketOf(radius int, found bool) Bucket {
	switch {
	case found && radius == 0:
		return BucketZero
	case found && radius == 1:
		return BucketOne
	default:
		return BucketAbove
	}
}

// CenterFunction names a rule whose output depends on the center cell alone.
type CenterFunction int

const (
	CenterConstantZero CenterFunction = iota
	CenterConstantOne
	CenterIdentity
	CenterNot
)

func (f CenterFunction) String() string {
	switch f {
	case CenterConstantZero:
		return "constant 0"
	case CenterConstantOne:
		return "constant 1"
	case CenterIdentity:
		return "identity"
	default:
		return "NOT"
	}
}

// CenterOnly checks the rule table directly: ok is true iff every neighborhood's
// output equals f(center) for a single f.
func CenterOnly(rule automaton.Rule) (CenterFunction, bool) {
	f0, f1 := rule.Output(automaton.Code(false, false, false)), rule.Output(automaton.Code(false, true, false))
	for code := 0; code < automaton.NeighborhoodCount; code++ {
		center := code&2 != 0
		want := f0
		if center {
			want = f1
		}
		if rule.Output(code) != want {
			return 0, false
		}
	}
	switch {
	case !f0 && !f1:
		return CenterConstantZero, true
	case f0 && f1:
		return CenterConstantOne, true
	case !f0 && f1:
		return CenterIdentity, true
	default:
		return CenterNot, true
	}
}

type SurveyEntry struct {
	Rule   automaton.Rule `json:"rule"`
	Radius int            `json:"radius"`
	Found  bool           `json:"found"`
	Bucket Bucket         `json:"bucket"`
}

// CenterEntry is the follow-up analysis of a radius-0 rule.
type CenterEntry struct {
	Rule       automaton.Rule `json:"rule"`
	CenterOnly bool           `json:"center_only"`
	Function   string         `json:"function,omitempty"`
}

type SurveyReport struct {
	Width       int            `json:"width"`
	Generations int            `json:"generations"`
	Entries     []SurveyEntry  `json:"entries"`
	Counts      map[Bucket]int `json:"counts"`
	RadiusZero  []CenterEntry  `json:"radius_zero"`
}

// Survey infers the minimal radius of every rule from SurveyTrials runs each. The
// radius-0 bucket comes from the observed data; the center-only check inspects the
// rule table, so the two can disagree when sampling never exercised a neighborhood.
func Survey(ctx context.Context, workers, width, generations int) (SurveyReport, error) {
	entries, err := survey.Rules(ctx, workers, func(_ context.Context, rule automaton.Rule) (SurveyEntry, error) {
		rep := Run(Config{Rule: rule, Width: width, Generations: generations, MaxRadius: SurveyMaxRadius, Trials: SurveyTrials})
		return SurveyEntry{Rule: rule, Radius: rep.Radius, Found: rep.Found, Bucket: bucketOf(rep.Radius, rep.Found)}, nil
	})
	if err != nil {
		return SurveyReport{}, err
	}

	out := SurveyReport{Width: width, Generations: generations, Entries: entries, Counts: map[Bucket]int{}}
	for _, e := range entries {
		out.Counts[e.Bucket]++
		if e.Bucket != BucketZero {
			continue
		}
		ce := CenterEntry{Rule: e.Rule}
		if f, ok := CenterOnly(e.Rule); ok {
			ce.CenterOnly = true
			ce.Function = f.String()
		}
		out.RadiusZero = append(out.RadiusZero, ce)
	}
	return out, nil
}
