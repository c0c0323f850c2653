package logging

// ProgressSampler suppresses repetitive progress logs, emitting only when the
// percentage crosses into a new bucket.
type ProgressSampler struct {
	bucketSize int
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits every bucketSize
// percent (default 10).
func NewProgressSampler(bucketSize int) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether percent starts a new bucket. 100 always logs once.
func (s *ProgressSampler) ShouldLog(percent int) bool {
	if s == nil {
		return true
	}
	if percent < 0 {
		return false
	}
	bucket := percent / s.bucketSize
	if percent >= 100 {
		bucket = 100/s.bucketSize + 1
	}
	if bucket <= s.lastBucket {
		return false
	}
	s.lastBucket = bucket
	return true
}

// Reset clears the sampler state (e.g. when a new merge starts).
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastBucket = -1
}
