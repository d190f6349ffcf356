package config

import "fmt"

const (
	bytesPerKB = 1024
	bytesPerMB = 1024 * 1024
	bytesPerGB = 1024 * 1024 * 1024
)

// SizeSpec represents a size value with a unit.
// At most one field should be set; an empty spec means no limit.
type SizeSpec struct {
	B  *float64 `yaml:"b,omitempty"`
	KB *float64 `yaml:"kb,omitempty"`
	MB *float64 `yaml:"mb,omitempty"`
	GB *float64 `yaml:"gb,omitempty"`
}

// ToBytes converts the SizeSpec to bytes. An empty spec is zero.
func (s *SizeSpec) ToBytes() int64 {
	switch {
	case s.B != nil:
		return int64(*s.B)
	case s.KB != nil:
		return int64(*s.KB * bytesPerKB)
	case s.MB != nil:
		return int64(*s.MB * bytesPerMB)
	case s.GB != nil:
		return int64(*s.GB * bytesPerGB)
	default:
		return 0
	}
}

// Validate checks that at most one size unit is set and that it is not negative.
func (s *SizeSpec) Validate() error {
	count := 0
	for _, v := range []*float64{s.B, s.KB, s.MB, s.GB} {
		if v == nil {
			continue
		}
		if *v < 0 {
			return fmt.Errorf("size must not be negative, got %v", *v)
		}
		count++
	}

	if count > 1 {
		return fmt.Errorf("only one size unit allowed")
	}

	return nil
}
