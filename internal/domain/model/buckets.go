package model

// DistanceBucket partitions race distances into the four standard trip
// categories. Boundaries are exact: 1400 is still a sprint, 1401 is a mile.
type DistanceBucket int

const (
	SprintBucket DistanceBucket = iota
	MileBucket
	IntermediateBucket
	LongBucket
)

// BucketForDistance is total over all positive distances.
func BucketForDistance(meters int) DistanceBucket {
	switch {
	case meters <= 1400:
		return SprintBucket
	case meters <= 1800:
		return MileBucket
	case meters <= 2200:
		return IntermediateBucket
	default:
		return LongBucket
	}
}

func (b DistanceBucket) String() string {
	switch b {
	case SprintBucket:
		return "sprint"
	case MileBucket:
		return "mile"
	case IntermediateBucket:
		return "intermediate"
	default:
		return "long"
	}
}

// PostBucket groups post positions into inner (1-4), middle (5-12) and
// outer (13+) draws.
type PostBucket int

const (
	InnerPost PostBucket = iota
	MiddlePost
	OuterPost
)

// BucketForPost maps a post position onto its PostBucket.
func BucketForPost(post int) PostBucket {
	switch {
	case post <= 4:
		return InnerPost
	case post <= 12:
		return MiddlePost
	default:
		return OuterPost
	}
}

func (b PostBucket) String() string {
	switch b {
	case InnerPost:
		return "inner"
	case MiddlePost:
		return "middle"
	default:
		return "outer"
	}
}

// WeightBucket groups carried weight: light (≤54kg), standard (≤56kg),
// heavy (≤58kg), very heavy above that.
type WeightBucket int

const (
	LightWeight WeightBucket = iota
	StandardWeight
	HeavyWeight
	VeryHeavyWeight
)

// BucketForWeight maps carried weight in kg onto its WeightBucket.
func BucketForWeight(kg float64) WeightBucket {
	switch {
	case kg <= 54:
		return LightWeight
	case kg <= 56:
		return StandardWeight
	case kg <= 58:
		return HeavyWeight
	default:
		return VeryHeavyWeight
	}
}

func (b WeightBucket) String() string {
	switch b {
	case LightWeight:
		return "light"
	case StandardWeight:
		return "standard"
	case HeavyWeight:
		return "heavy"
	default:
		return "very_heavy"
	}
}
